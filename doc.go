// Package ipyvolume exports interactive 3D-visualization widget state to
// standalone HTML artifacts, optionally bundling every JavaScript/CSS
// dependency for offline viewing.
//
// # Quick Start
//
// Serialize a widget collection into a single HTML page that loads its
// dependencies from CDNs:
//
//	fig := &ipyvolume.StaticWidget{
//	    ID:            "a1b2c3",
//	    Name:          "FigureModel",
//	    Module:        "ipyvolume",
//	    ModuleVersion: "~0.5.2",
//	    Attributes:    map[string]any{"width": 400, "height": 500},
//	}
//	err := ipyvolume.EmbedHTML("out/page.html", []ipyvolume.Widget{fig}, ipyvolume.DefaultOptions())
//
// # Offline Bundling
//
// With Offline and OfflineReq set, all four script dependencies (widget
// runtime, module loader, embedding script, icon font) are downloaded next
// to the page so it renders with no internet connection:
//
//	opts := ipyvolume.DefaultOptions()
//	opts.Offline = true
//	opts.ScriptsPath = "scripts"
//	err := ipyvolume.EmbedHTML("out/page.html", widgets, opts)
//
// The scripts path must stay under the output directory's subtree; anything
// else fails with ErrScriptsPathEscape before a single byte is written.
//
// # Service
//
// For repeated exports, custom timeouts, captions, or PNG previews, build a
// Service:
//
//	svc := ipyvolume.New(ipyvolume.WithTimeout(2 * time.Minute))
//	defer svc.Close()
//	err := svc.Embed(ctx, "out/page.html", widgets, opts)
//	png, err := svc.Preview(ctx, "out/page.html")
//
// Preview requires Chrome/Chromium; the go-rod library downloads a managed
// Chromium instance on first run. Set ROD_BROWSER_BIN to use a pre-installed
// binary; with ROD_BROWSER_BIN set or CI=true the sandbox is disabled for
// containerized environments.
//
// # Captions
//
// Options.BodyPreMarkdown and BodyPostMarkdown accept Markdown (GFM plus
// syntax-highlighted code blocks) rendered into the body_pre/body_post slots
// of the page template, above and below the embedded views.
package ipyvolume
