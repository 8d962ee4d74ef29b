package ipyvolume

import (
	"path/filepath"
	"strings"
	"time"
)

// Default version strings for the downloadable dependencies.
const (
	DefaultWidgetVersion      = "0.5.2"
	DefaultRequireJSVersion   = "2.3.4"
	DefaultHTMLManagerVersion = "^0.20.0"
	DefaultFontAwesomeVersion = "4.7.0"
)

// DefaultTitle is used when no page title is supplied.
const DefaultTitle = "IPyVolume Widget"

// DefaultScriptsPath is the folder assets are bundled into, relative to the
// output file, when no explicit scripts path is supplied.
const DefaultScriptsPath = "scripts_folder"

// Versions pins the dependency versions used to build asset URLs and
// filenames. Constructed once and passed down; nothing is read from ambient
// installation state at call time.
type Versions struct {
	Widget      string // ipyvolume runtime on unpkg
	RequireJS   string // require.js on cdnjs
	HTMLManager string // @jupyter-widgets/html-manager on unpkg, may carry a ^/~ range marker
	FontAwesome string // font-awesome zip package
}

// DefaultVersions returns the version set the module was built against.
func DefaultVersions() Versions {
	return Versions{
		Widget:      DefaultWidgetVersion,
		RequireJS:   DefaultRequireJSVersion,
		HTMLManager: DefaultHTMLManagerVersion,
		FontAwesome: DefaultFontAwesomeVersion,
	}
}

// merged fills zero fields from the defaults so a partially populated
// Versions struct stays usable.
func (v Versions) merged() Versions {
	def := DefaultVersions()
	if v.Widget == "" {
		v.Widget = def.Widget
	}
	if v.RequireJS == "" {
		v.RequireJS = def.RequireJS
	}
	if v.HTMLManager == "" {
		v.HTMLManager = def.HTMLManager
	}
	if v.FontAwesome == "" {
		v.FontAwesome = def.FontAwesome
	}
	return v
}

// bareHTMLManager strips a leading semver range marker (^ or ~) for use in
// the versioned embed script filename.
func (v Versions) bareHTMLManager() string {
	return strings.TrimLeft(v.HTMLManager, "^~")
}

// Options controls a single export call.
type Options struct {
	// Makedirs creates missing directories on the output path.
	Makedirs bool

	// Title is the HTML page title.
	Title string

	// AllStates serializes the complete state of every reachable widget,
	// ignoring default-value pruning.
	AllStates bool

	// Offline switches from CDN references to local script URLs.
	Offline bool

	// OfflineReq downloads all required js/css packages so the page works
	// with no internet connection. Only meaningful with Offline.
	OfflineReq bool

	// ScriptsPath is the folder required packages are saved to, relative to
	// the output file unless absolute. It must stay under the output
	// directory's subtree.
	ScriptsPath string

	// DropDefaults removes attributes equal to their declared defaults from
	// the serialized widget state.
	DropDefaults bool

	// Template overrides the built-in HTML page template. It must reference
	// at least {title} and {snippet}.
	Template string

	// TemplateOptions supplies values for additional template placeholders
	// and overrides the defaults for extra_script_head, body_pre, body_post.
	TemplateOptions map[string]string

	// BodyPreMarkdown and BodyPostMarkdown are rendered from Markdown to
	// HTML and take the body_pre/body_post slots. They win over the same
	// keys in TemplateOptions.
	BodyPreMarkdown  string
	BodyPostMarkdown string

	// Devmode copies a local developer build of the widget runtime instead
	// of downloading it, when one exists at DevPath.
	Devmode bool

	// DevPath locates the developer build artifact. Defaults to
	// js/dist/index.js relative to the working directory.
	DevPath string

	// Versions pins dependency versions. Zero fields fall back to defaults.
	Versions Versions
}

// DefaultOptions returns export options matching the documented defaults:
// online mode, directory creation enabled, standard title and scripts folder.
func DefaultOptions() Options {
	return Options{
		Makedirs:    true,
		Title:       DefaultTitle,
		OfflineReq:  true,
		ScriptsPath: DefaultScriptsPath,
		Versions:    DefaultVersions(),
	}
}

// normalized fills zero-valued fields that have non-zero defaults. Boolean
// flags are taken as-is; only fields whose zero value is never valid are
// defaulted.
func (o Options) normalized() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.ScriptsPath == "" {
		o.ScriptsPath = DefaultScriptsPath
	}
	if o.DevPath == "" {
		o.DevPath = filepath.Join("js", "dist", "index.js")
	}
	o.Versions = o.Versions.merged()
	return o
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}

// defaultTimeout bounds each network fetch and the preview render.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-fetch and preview timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("ipyvolume: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}
