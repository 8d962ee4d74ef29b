package ipyvolume

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRenderCaption - Markdown caption rendering
// ---------------------------------------------------------------------------

func TestRenderCaption(t *testing.T) {
	t.Parallel()

	r := newGoldmarkCaption()

	t.Run("basic markdown", func(t *testing.T) {
		t.Parallel()

		got, err := r.RenderCaption(context.Background(), "# Results\n\nA **bold** claim.")
		if err != nil {
			t.Fatalf("RenderCaption() error = %v", err)
		}
		if !strings.Contains(got, "<h1") || !strings.Contains(got, "Results") {
			t.Errorf("heading missing from %q", got)
		}
		if !strings.Contains(got, "<strong>bold</strong>") {
			t.Errorf("emphasis missing from %q", got)
		}
	})

	t.Run("gfm table", func(t *testing.T) {
		t.Parallel()

		got, err := r.RenderCaption(context.Background(), "| a | b |\n|---|---|\n| 1 | 2 |")
		if err != nil {
			t.Fatalf("RenderCaption() error = %v", err)
		}
		if !strings.Contains(got, "<table>") {
			t.Errorf("table missing from %q", got)
		}
	})

	t.Run("fenced code highlighted inline", func(t *testing.T) {
		t.Parallel()

		got, err := r.RenderCaption(context.Background(), "```go\nfunc main() {}\n```")
		if err != nil {
			t.Fatalf("RenderCaption() error = %v", err)
		}
		// Inline styles keep the exported page self-contained.
		if !strings.Contains(got, "style=") {
			t.Errorf("highlighting styles missing from %q", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		got, err := r.RenderCaption(context.Background(), "")
		if err != nil {
			t.Fatalf("RenderCaption() error = %v", err)
		}
		if got != "" {
			t.Errorf("RenderCaption(\"\") = %q, want empty", got)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.RenderCaption(ctx, "# hi"); err == nil {
			t.Error("RenderCaption() with canceled context succeeded")
		}
	})
}
