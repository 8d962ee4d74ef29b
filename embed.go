package ipyvolume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/batermj/ipyvolume/internal/fetch"
	"github.com/batermj/ipyvolume/internal/fileutil"
)

// Service orchestrates exports: it serializes widget state, places the
// required assets, and renders the final HTML artifact. A Service is safe to
// reuse across calls; concurrent exports into the same output directory are
// the caller's responsibility.
type Service struct {
	cfg       serviceConfig
	fetcher   assetFetcher
	embedder  snippetEmbedder
	caption   captionRenderer
	previewer previewRenderer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg:      serviceConfig{timeout: defaultTimeout},
		embedder: &jsonEmbedder{},
		caption:  newGoldmarkCaption(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create fetcher if not injected (e.g., by tests)
	if s.fetcher == nil {
		s.fetcher = fetch.New(fetch.WithTimeout(s.cfg.timeout))
	}

	return s
}

// Close releases resources (headless Chrome browser, if a preview ran).
func (s *Service) Close() error {
	if s.previewer != nil {
		return s.previewer.Close()
	}
	return nil
}

// EmbedHTML writes an HTML file with views of the given widgets embedded,
// using default service configuration. See (*Service).Embed.
func EmbedHTML(path string, widgets []Widget, opts Options) error {
	s := New()
	defer s.Close()
	return s.Embed(context.Background(), path, widgets, opts)
}

// Embed writes an HTML file at outPath with views of the given widgets
// embedded.
//
// Online mode (the default) references every script dependency on its CDN,
// so the page needs a network connection; only the graphics runtime is
// copied next to the output file. Offline bundled mode (Offline and
// OfflineReq set) downloads all four dependencies so the page works with no
// internet access: the widget and graphics runtimes land next to the output
// file, the module loader, embedding script and icon font land in
// Options.ScriptsPath.
//
// ScriptsPath must stay under the output directory's subtree; a path that
// escapes it fails with ErrScriptsPathEscape before anything is written.
// A failure partway through asset retrieval leaves the partially populated
// directories in place for the caller to inspect.
func (s *Service) Embed(ctx context.Context, outPath string, widgets []Widget, opts Options) error {
	opts = opts.normalized()

	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	outDir := filepath.Dir(absOut)

	// Bundling is the only supported offline path: without it the snippet
	// would reference local scripts nobody placed.
	if opts.Offline && !opts.OfflineReq {
		return ErrOfflineScriptsRequired
	}

	// Path-escape check comes before any directory creation, network call
	// or file write, so a rejected export leaves no trace.
	var scriptsDir, relPrefix string
	if opts.Offline {
		rel, err := fileutil.RelUnder(outDir, opts.ScriptsPath)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrScriptsPathEscape, opts.ScriptsPath)
		}
		scriptsDir = filepath.Join(outDir, rel)
		if rel != "" {
			relPrefix = filepath.ToSlash(rel) + "/"
		}
	}

	if opts.Makedirs {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	} else if !fileutil.DirExists(outDir) {
		return fmt.Errorf("%w: output directory %s does not exist", ErrWriteOutput, outDir)
	}

	tmplOpts, err := s.buildTemplateOptions(ctx, opts)
	if err != nil {
		return err
	}

	doc, err := DependencyState(widgets, opts.DropDefaults, opts.AllStates)
	if err != nil {
		return err
	}
	viewIDs := make([]string, 0, len(widgets))
	for _, w := range widgets {
		viewIDs = append(viewIDs, w.ModelID())
	}

	v := opts.Versions
	var snippet string
	if !opts.Offline {
		embedURL := fmt.Sprintf(htmlManagerCDNPattern, v.HTMLManager)
		snippet, err = s.embedder.EmbedSnippet(doc, viewIDs, embedURL, true, v.RequireJS)
		if err != nil {
			return err
		}
	} else {
		if _, err := s.SaveWidgetJS(ctx, outDir, v.Widget, opts.Devmode, opts.DevPath); err != nil {
			return err
		}
		fnameRequire, err := s.SaveRequireJS(ctx, scriptsDir, v.RequireJS)
		if err != nil {
			return err
		}
		fnameEmbed, err := s.SaveEmbedJS(ctx, scriptsDir, v.HTMLManager)
		if err != nil {
			return err
		}
		fnameFont, err := s.SaveFontAwesome(ctx, scriptsDir, v.FontAwesome)
		if err != nil {
			return err
		}

		core, err := s.embedder.EmbedSnippet(doc, viewIDs, relPrefix+fnameEmbed, false, "")
		if err != nil {
			return err
		}
		snippet = wrapOfflineSnippet(core, relPrefix, fnameFont, fnameRequire)
	}

	// The graphics runtime always lands next to the output file, in both
	// modes, because the snippet machinery knows nothing about it.
	if _, err := WriteGraphicsRuntime(outDir); err != nil {
		return err
	}

	tmplOpts[PlaceholderSnippet] = snippet

	tmpl := opts.Template
	if tmpl == "" {
		tmpl = DefaultTemplate()
	}
	page, err := renderTemplate(tmpl, tmplOpts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(absOut, []byte(page), 0o644); err != nil { // #nosec G306 -- HTML artifact, world-readable
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// buildTemplateOptions merges defaults, caller overrides, and rendered
// Markdown captions into the placeholder value map.
func (s *Service) buildTemplateOptions(ctx context.Context, opts Options) (map[string]string, error) {
	tmplOpts := defaultTemplateOptions(opts.Title, opts.TemplateOptions)

	if opts.BodyPreMarkdown != "" {
		pre, err := s.caption.RenderCaption(ctx, opts.BodyPreMarkdown)
		if err != nil {
			return nil, err
		}
		tmplOpts[PlaceholderBodyPre] = pre
	}
	if opts.BodyPostMarkdown != "" {
		post, err := s.caption.RenderCaption(ctx, opts.BodyPostMarkdown)
		if err != nil {
			return nil, err
		}
		tmplOpts[PlaceholderBodyPost] = post
	}
	return tmplOpts, nil
}

// wrapOfflineSnippet surrounds the embedding snippet with the icon-font
// stylesheet link and the module-loader script tag, both referenced through
// the relative scripts prefix.
func wrapOfflineSnippet(core, relPrefix, fontFolder, requireName string) string {
	return fmt.Sprintf(`
<link href="%s%s/css/font-awesome.min.css" rel="stylesheet">
<script src="%s%s" crossorigin="anonymous"></script>
%s`, relPrefix, fontFolder, relPrefix, requireName, core)
}
