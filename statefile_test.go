package ipyvolume

import (
	"errors"
	"strings"
	"testing"
)

const sampleStateFile = `{
  "version_major": 2,
  "version_minor": 0,
  "state": {
    "fig1": {
      "model_name": "FigureModel",
      "model_module": "ipyvolume",
      "model_module_version": "~0.5.2",
      "state": {"scatters": ["IPY_MODEL_sc1"], "width": 400}
    },
    "sc1": {
      "model_name": "ScatterModel",
      "model_module": "ipyvolume",
      "model_module_version": "~0.5.2",
      "state": {"size": 2}
    }
  },
  "views": ["fig1"]
}`

// ---------------------------------------------------------------------------
// TestLoadWidgets - state-file parsing
// ---------------------------------------------------------------------------

func TestLoadWidgets(t *testing.T) {
	t.Parallel()

	t.Run("views select the collection", func(t *testing.T) {
		t.Parallel()

		widgets, err := LoadWidgets(strings.NewReader(sampleStateFile))
		if err != nil {
			t.Fatalf("LoadWidgets() error = %v", err)
		}
		if len(widgets) != 1 {
			t.Fatalf("collection size = %d, want 1", len(widgets))
		}
		if widgets[0].ModelID() != "fig1" {
			t.Errorf("view widget = %q, want fig1", widgets[0].ModelID())
		}
	})

	t.Run("references wired from IPY_MODEL_ markers", func(t *testing.T) {
		t.Parallel()

		widgets, err := LoadWidgets(strings.NewReader(sampleStateFile))
		if err != nil {
			t.Fatalf("LoadWidgets() error = %v", err)
		}
		ref, ok := widgets[0].(Referencer)
		if !ok {
			t.Fatal("loaded widget does not expose references")
		}
		refs := ref.References()
		if len(refs) != 1 || refs[0].ModelID() != "sc1" {
			t.Fatalf("references = %v, want [sc1]", refs)
		}

		// The dependency closure must therefore include both models.
		doc, err := DependencyState(widgets, false, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(doc.State) != 2 {
			t.Errorf("closure has %d models, want 2", len(doc.State))
		}
	})

	t.Run("absent views means every model", func(t *testing.T) {
		t.Parallel()

		noViews := strings.Replace(sampleStateFile, `,
  "views": ["fig1"]`, "", 1)
		widgets, err := LoadWidgets(strings.NewReader(noViews))
		if err != nil {
			t.Fatalf("LoadWidgets() error = %v", err)
		}
		if len(widgets) != 2 {
			t.Fatalf("collection size = %d, want 2", len(widgets))
		}
		// Sorted by model id for deterministic exports.
		if widgets[0].ModelID() != "fig1" || widgets[1].ModelID() != "sc1" {
			t.Errorf("collection order = [%s %s], want [fig1 sc1]", widgets[0].ModelID(), widgets[1].ModelID())
		}
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadWidgets(strings.NewReader("{not json"))
		if !errors.Is(err, ErrStateFileParse) {
			t.Errorf("LoadWidgets() error = %v, want ErrStateFileParse", err)
		}
	})

	t.Run("unsupported version rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadWidgets(strings.NewReader(`{"version_major": 1, "version_minor": 0, "state": {}}`))
		if !errors.Is(err, ErrStateFileVersion) {
			t.Errorf("LoadWidgets() error = %v, want ErrStateFileVersion", err)
		}
	})

	t.Run("view naming unknown model rejected", func(t *testing.T) {
		t.Parallel()

		doc := `{"version_major": 2, "version_minor": 0, "state": {}, "views": ["ghost"]}`
		_, err := LoadWidgets(strings.NewReader(doc))
		if !errors.Is(err, ErrUnknownView) {
			t.Errorf("LoadWidgets() error = %v, want ErrUnknownView", err)
		}
	})
}

func TestReferencedIDs(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"direct": "IPY_MODEL_a",
		"list":   []any{"IPY_MODEL_b", "plain", 7},
		"nested": map[string]any{"deep": []any{"IPY_MODEL_c"}},
		"plain":  "no marker",
		"bare":   "IPY_MODEL_",
	}
	got := referencedIDs(attrs)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("referencedIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("referencedIDs() = %v, want %v", got, want)
		}
	}
}
