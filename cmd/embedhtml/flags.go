package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared with future subcommands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// modeFlags holds export mode flags.
type modeFlags struct {
	offline    bool
	offlineReq bool
	scripts    string
	noMakedirs bool
}

// stateFlags holds serialization flags.
type stateFlags struct {
	dropDefaults bool
	allStates    bool
}

// pageFlags holds page content flags.
type pageFlags struct {
	title        string
	templatePath string
	templateOpts map[string]string
	bodyPreMD    string
	bodyPostMD   string
}

// versionFlags pins dependency versions, overriding config and defaults.
type versionFlags struct {
	widget      string
	requireJS   string
	htmlManager string
	fontAwesome string
}

// devFlags holds developer-build flags.
type devFlags struct {
	devmode bool
	devPath string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common      commonFlags
	mode        modeFlags
	state       stateFlags
	page        pageFlags
	versions    versionFlags
	dev         devFlags
	preview     string
	timeout     string
	showVersion bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-asset progress")
}

// addModeFlags adds export mode flags to a FlagSet.
func addModeFlags(fs *flag.FlagSet, f *modeFlags) {
	fs.BoolVar(&f.offline, "offline", false, "bundle js/css dependencies next to the page")
	fs.BoolVar(&f.offlineReq, "offline-req", true, "download required packages in offline mode")
	fs.StringVarP(&f.scripts, "scripts-path", "s", "", "folder for bundled scripts, relative to the output file")
	fs.BoolVar(&f.noMakedirs, "no-makedirs", false, "do not create missing output directories")
}

// addStateFlags adds serialization flags to a FlagSet.
func addStateFlags(fs *flag.FlagSet, f *stateFlags) {
	fs.BoolVar(&f.dropDefaults, "drop-defaults", false, "omit attributes equal to their defaults")
	fs.BoolVar(&f.allStates, "all-states", false, "serialize the full state of every reachable widget")
}

// addPageFlags adds page content flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.title, "title", "t", "", "HTML page title")
	fs.StringVar(&f.templatePath, "template", "", "custom HTML template file")
	fs.StringToStringVar(&f.templateOpts, "template-opt", nil, "extra template placeholder values (key=value)")
	fs.StringVar(&f.bodyPreMD, "body-pre-md", "", "Markdown file rendered above the views")
	fs.StringVar(&f.bodyPostMD, "body-post-md", "", "Markdown file rendered below the views")
}

// addVersionFlags adds dependency version flags to a FlagSet.
func addVersionFlags(fs *flag.FlagSet, f *versionFlags) {
	fs.StringVar(&f.widget, "widget-version", "", "ipyvolume runtime version")
	fs.StringVar(&f.requireJS, "requirejs-version", "", "require.js version")
	fs.StringVar(&f.htmlManager, "html-manager-version", "", "html-manager version (may carry ^/~)")
	fs.StringVar(&f.fontAwesome, "font-awesome-version", "", "font-awesome version")
}

// addDevFlags adds developer-build flags to a FlagSet.
func addDevFlags(fs *flag.FlagSet, f *devFlags) {
	fs.BoolVar(&f.devmode, "devmode", false, "prefer a local developer build of the widget runtime")
	fs.StringVar(&f.devPath, "dev-path", "", "path to the developer build (default js/dist/index.js)")
}

// parseFlags parses export flags and returns positional args.
func parseFlags(args []string) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("embedhtml", flag.ContinueOnError)
	f := &exportFlags{}

	fs.StringVar(&f.preview, "preview", "", "write a PNG screenshot of the exported page")
	fs.StringVar(&f.timeout, "timeout", "", "per-download and preview timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	addCommonFlags(fs, &f.common)
	addModeFlags(fs, &f.mode)
	addStateFlags(fs, &f.state)
	addPageFlags(fs, &f.page)
	addVersionFlags(fs, &f.versions)
	addDevFlags(fs, &f.dev)

	fs.Usage = func() { printUsage(os.Stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
