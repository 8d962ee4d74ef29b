package ipyvolume

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// captionRenderer converts Markdown caption text into an HTML fragment for
// the body_pre/body_post template slots.
type captionRenderer interface {
	RenderCaption(ctx context.Context, content string) (string, error)
}

// goldmarkCaption renders captions using goldmark (pure Go) with GFM and
// syntax highlighting, so code blocks in figure captions come out styled.
type goldmarkCaption struct {
	md goldmark.Markdown
}

// newGoldmarkCaption creates a goldmarkCaption with GFM extensions.
func newGoldmarkCaption() *goldmarkCaption {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(), // Self-closing tags
		),
	)
	return &goldmarkCaption{md: md}
}

// RenderCaption converts Markdown to an HTML fragment. Supports context
// cancellation via goroutine + select pattern since goldmark doesn't
// natively support context.
func (c *goldmarkCaption) RenderCaption(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrCaptionRender, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ captionRenderer = (*goldmarkCaption)(nil)
