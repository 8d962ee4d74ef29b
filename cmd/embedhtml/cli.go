package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/batermj/ipyvolume"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidArgs    = errors.New("usage: embedhtml [flags] <state.json> <output.html>")
	ErrReadState      = errors.New("failed to read widget state file")
	ErrReadTemplate   = errors.New("failed to read template file")
	ErrReadCaption    = errors.New("failed to read caption file")
	ErrWritePreview   = errors.New("failed to write preview image")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// run loads the widget state file, builds export options from config and
// flags, and delegates to the library service.
func run(flags *exportFlags, args []string, stderr io.Writer) error {
	if len(args) != 2 {
		return ErrInvalidArgs
	}
	statePath, outPath := args[0], args[1]

	cfg := DefaultConfig()
	if flags.common.config != "" {
		loaded, err := LoadConfig(flags.common.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	widgets, err := ipyvolume.LoadWidgetsFile(statePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadState, err)
	}

	opts, err := buildOptions(flags, cfg)
	if err != nil {
		return err
	}

	var svcOpts []ipyvolume.Option
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.timeout)
		}
		svcOpts = append(svcOpts, ipyvolume.WithTimeout(d))
	}

	svc := ipyvolume.New(svcOpts...)
	defer svc.Close()

	ctx := context.Background()
	if err := svc.Embed(ctx, outPath, widgets, opts); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(stderr, "Created %s\n", outPath)
	}

	if flags.preview != "" {
		png, err := svc.Preview(ctx, outPath)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.preview, png, 0o644); err != nil { // #nosec G306 -- preview image
			return fmt.Errorf("%w: %v", ErrWritePreview, err)
		}
		if !flags.common.quiet {
			fmt.Fprintf(stderr, "Created %s\n", flags.preview)
		}
	}

	return nil
}

// buildOptions merges library defaults, config file values, and flags, in
// that order of precedence (later wins).
func buildOptions(flags *exportFlags, cfg *Config) (ipyvolume.Options, error) {
	opts := ipyvolume.DefaultOptions()

	// Config layer.
	if cfg.Title != "" {
		opts.Title = cfg.Title
	}
	opts.Offline = cfg.Offline
	if cfg.ScriptsPath != "" {
		opts.ScriptsPath = cfg.ScriptsPath
	}
	if cfg.TemplateOpt != nil {
		opts.TemplateOptions = cfg.TemplateOpt
	}
	opts.Devmode = cfg.Devmode
	if cfg.DevPath != "" {
		opts.DevPath = cfg.DevPath
	}
	applyVersions(&opts.Versions, cfg.Versions)

	templatePath := cfg.Template

	// Flag layer.
	f := flags
	if f.page.title != "" {
		opts.Title = f.page.title
	}
	if f.mode.offline {
		opts.Offline = true
	}
	opts.OfflineReq = f.mode.offlineReq
	if f.mode.scripts != "" {
		opts.ScriptsPath = f.mode.scripts
	}
	opts.Makedirs = !f.mode.noMakedirs
	opts.DropDefaults = f.state.dropDefaults
	opts.AllStates = f.state.allStates
	if f.dev.devmode {
		opts.Devmode = true
	}
	if f.dev.devPath != "" {
		opts.DevPath = f.dev.devPath
	}
	if f.page.templatePath != "" {
		templatePath = f.page.templatePath
	}
	for k, v := range f.page.templateOpts {
		if opts.TemplateOptions == nil {
			opts.TemplateOptions = map[string]string{}
		}
		opts.TemplateOptions[k] = v
	}
	applyVersions(&opts.Versions, VersionsConfig{
		Widget:      f.versions.widget,
		RequireJS:   f.versions.requireJS,
		HTMLManager: f.versions.htmlManager,
		FontAwesome: f.versions.fontAwesome,
	})

	if templatePath != "" {
		tmpl, err := os.ReadFile(templatePath) // #nosec G304 -- user-supplied template
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrReadTemplate, err)
		}
		opts.Template = string(tmpl)
	}

	if f.page.bodyPreMD != "" {
		md, err := os.ReadFile(f.page.bodyPreMD) // #nosec G304 -- user-supplied caption
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrReadCaption, err)
		}
		opts.BodyPreMarkdown = string(md)
	}
	if f.page.bodyPostMD != "" {
		md, err := os.ReadFile(f.page.bodyPostMD) // #nosec G304 -- user-supplied caption
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrReadCaption, err)
		}
		opts.BodyPostMarkdown = string(md)
	}

	return opts, nil
}

// applyVersions overlays non-empty version strings.
func applyVersions(dst *ipyvolume.Versions, src VersionsConfig) {
	if src.Widget != "" {
		dst.Widget = src.Widget
	}
	if src.RequireJS != "" {
		dst.RequireJS = src.RequireJS
	}
	if src.HTMLManager != "" {
		dst.HTMLManager = src.HTMLManager
	}
	if src.FontAwesome != "" {
		dst.FontAwesome = src.FontAwesome
	}
}

// printUsage writes the command synopsis and flag help.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "embedhtml - export serialized widget state to a standalone HTML page")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "usage: embedhtml [flags] <state.json> <output.html>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
