package ipyvolume

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MIME types recognized by the browser-side widget manager.
const (
	stateMIME = "application/vnd.jupyter.widget-state+json"
	viewMIME  = "application/vnd.jupyter.widget-view+json"
)

// CDN URL patterns for online mode. Offline mode downloads the same files
// instead of referencing them (see assets.go).
const (
	requireJSCDNPattern   = "https://unpkg.com/requirejs@%s/require.js"
	htmlManagerCDNPattern = "https://unpkg.com/@jupyter-widgets/html-manager@%s/dist/embed-amd.js"
)

// snippetEmbedder produces the bootstrap snippet that reconstructs widgets in
// the browser from a serialized state document.
type snippetEmbedder interface {
	EmbedSnippet(doc *StateDocument, viewIDs []string, embedURL string, requireJS bool, requireJSVersion string) (string, error)
}

// jsonEmbedder emits the html-manager state/view script-tag format.
type jsonEmbedder struct{}

// EmbedSnippet renders the bootstrap snippet: optionally a module-loader
// script tag, then the embedding script, the state document, and one view
// tag per widget in viewIDs. embedURL may be a CDN URL or a path relative to
// the page.
func (e *jsonEmbedder) EmbedSnippet(doc *StateDocument, viewIDs []string, embedURL string, requireJS bool, requireJSVersion string) (string, error) {
	stateJSON, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStateSerialize, err)
	}

	var b strings.Builder
	if requireJS {
		fmt.Fprintf(&b, "<script src=%q crossorigin=\"anonymous\"></script>\n",
			fmt.Sprintf(requireJSCDNPattern, requireJSVersion))
	}
	fmt.Fprintf(&b, "<script src=%q crossorigin=\"anonymous\"></script>\n", embedURL)

	fmt.Fprintf(&b, "<script type=%q>\n%s\n</script>\n", stateMIME, escapeScript(string(stateJSON)))

	for _, id := range viewIDs {
		view := fmt.Sprintf(`{"version_major": %d, "version_minor": %d, "model_id": %q}`,
			stateVersionMajor, stateVersionMinor, id)
		fmt.Fprintf(&b, "<script type=%q>\n%s\n</script>\n", viewMIME, view)
	}

	return b.String(), nil
}

// escapeScript prevents serialized content from closing its surrounding
// <script> block early.
func escapeScript(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}

// Compile-time interface check.
var _ snippetEmbedder = (*jsonEmbedder)(nil)
