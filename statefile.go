package ipyvolume

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Sentinel errors for state-file loading.
var (
	ErrStateFileParse   = errors.New("failed to parse widget state file")
	ErrStateFileVersion = errors.New("unsupported widget state version")
	ErrUnknownView      = errors.New("view references an unknown model id")
)

// modelRefPrefix marks attribute values that reference another widget by
// model id.
const modelRefPrefix = "IPY_MODEL_"

// stateFileDoc is the on-disk form of a serialized widget collection: the
// state document this module itself emits, plus an optional list of model
// ids to render views for.
type stateFileDoc struct {
	VersionMajor int                   `json:"version_major"`
	VersionMinor int                   `json:"version_minor"`
	State        map[string]ModelState `json:"state"`
	Views        []string              `json:"views,omitempty"`
}

// LoadWidgets reads a serialized widget-state document and reconstructs a
// widget collection from it. Widgets named in "views" (all of them when the
// list is absent) are returned as the collection; IPY_MODEL_ references in
// attribute values are wired up so dependency traversal reaches every model
// in the file.
func LoadWidgets(r io.Reader) ([]Widget, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateFileParse, err)
	}

	var doc stateFileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateFileParse, err)
	}
	if doc.VersionMajor != stateVersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrStateFileVersion, doc.VersionMajor, doc.VersionMinor)
	}

	byID := make(map[string]*StaticWidget, len(doc.State))
	for id, m := range doc.State {
		byID[id] = &StaticWidget{
			ID:            id,
			Name:          m.ModelName,
			Module:        m.ModelModule,
			ModuleVersion: m.ModelModuleVersion,
			Attributes:    m.State,
		}
	}

	for _, w := range byID {
		for _, id := range referencedIDs(w.Attributes) {
			if child, ok := byID[id]; ok {
				w.Refs = append(w.Refs, child)
			}
		}
		sortRefs(w.Refs)
	}

	views := doc.Views
	if views == nil {
		views = make([]string, 0, len(byID))
		for id := range byID {
			views = append(views, id)
		}
		sort.Strings(views)
	}

	widgets := make([]Widget, 0, len(views))
	for _, id := range views {
		w, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownView, id)
		}
		widgets = append(widgets, w)
	}
	return widgets, nil
}

// LoadWidgetsFile is LoadWidgets reading from a file path.
func LoadWidgetsFile(path string) ([]Widget, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied input file
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadWidgets(f)
}

// referencedIDs collects model ids referenced by IPY_MODEL_ markers anywhere
// in an attribute map, including inside nested slices and maps.
func referencedIDs(attrs map[string]any) []string {
	var ids []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			if rest, ok := strings.CutPrefix(t, modelRefPrefix); ok && rest != "" {
				ids = append(ids, rest)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(attrs)
	sort.Strings(ids)
	return ids
}

// sortRefs keeps reference order deterministic across loads.
func sortRefs(refs []Widget) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ModelID() < refs[j].ModelID() })
}
