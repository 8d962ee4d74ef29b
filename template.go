package ipyvolume

import (
	"fmt"
	"regexp"

	"github.com/batermj/ipyvolume/internal/assets"
)

// Placeholder names the built-in template declares. Custom templates may
// reference additional names as long as TemplateOptions supplies them.
const (
	PlaceholderTitle           = "title"
	PlaceholderExtraScriptHead = "extra_script_head"
	PlaceholderBodyPre         = "body_pre"
	PlaceholderBodyPost        = "body_post"
	PlaceholderSnippet         = "snippet"
)

// placeholderRe matches {name} references in a template. Anything that is
// not a valid placeholder name between braces is left untouched.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// DefaultTemplate returns the built-in HTML page template.
func DefaultTemplate() string {
	return assets.PageTemplate()
}

// renderTemplate substitutes {name} placeholders with values from opts.
// Every placeholder the template references must have a value; a missing one
// is an ErrMissingPlaceholder. Substitution is a single pass, so substituted
// values are never re-scanned and rendering is deterministic. Supplied keys
// the template does not reference are ignored.
func renderTemplate(tmpl string, opts map[string]string) (string, error) {
	if tmpl == "" {
		return "", ErrEmptyTemplate
	}

	// Validate before substituting so a failed render writes nothing.
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if _, ok := opts[m[1]]; !ok {
			return "", fmt.Errorf("%w: {%s}", ErrMissingPlaceholder, m[1])
		}
	}

	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]
		return opts[name]
	})
	return out, nil
}

// defaultTemplateOptions returns the base placeholder values merged with
// caller overrides. The snippet slot is filled by the orchestrator.
func defaultTemplateOptions(title string, overrides map[string]string) map[string]string {
	opts := map[string]string{
		PlaceholderTitle:           title,
		PlaceholderExtraScriptHead: "",
		PlaceholderBodyPre:         "",
		PlaceholderBodyPost:        "",
	}
	for k, v := range overrides {
		opts[k] = v
	}
	return opts
}
