package ipyvolume

import (
	"fmt"
	"reflect"
	"sort"
)

// Widget is the minimal surface this module needs from an interactive UI
// object: identity, model coordinates for the browser-side manager, and the
// attribute values to snapshot. Everything else about the widget object model
// is opaque here.
type Widget interface {
	// ModelID uniquely identifies the widget instance.
	ModelID() string

	// ModelName, ModelModule and ModelModuleVersion locate the browser-side
	// implementation of the widget.
	ModelName() string
	ModelModule() string
	ModelModuleVersion() string

	// State returns the attribute values to serialize.
	State() map[string]any
}

// DefaultsProvider is implemented by widgets that can report their default
// attribute values, enabling drop-defaults pruning.
type DefaultsProvider interface {
	Defaults() map[string]any
}

// Referencer is implemented by widgets that hold references to other
// widgets. Referenced widgets are pulled into the serialized state so the
// page can be reconstructed without a live backend.
type Referencer interface {
	References() []Widget
}

// StaticWidget is a plain-value Widget for state loaded from disk or built
// in tests.
type StaticWidget struct {
	ID            string
	Name          string
	Module        string
	ModuleVersion string
	Attributes    map[string]any
	DefaultAttrs  map[string]any
	Refs          []Widget
}

func (w *StaticWidget) ModelID() string            { return w.ID }
func (w *StaticWidget) ModelName() string          { return w.Name }
func (w *StaticWidget) ModelModule() string        { return w.Module }
func (w *StaticWidget) ModelModuleVersion() string { return w.ModuleVersion }
func (w *StaticWidget) State() map[string]any      { return w.Attributes }
func (w *StaticWidget) Defaults() map[string]any   { return w.DefaultAttrs }
func (w *StaticWidget) References() []Widget       { return w.Refs }

// Compile-time interface checks.
var (
	_ Widget           = (*StaticWidget)(nil)
	_ DefaultsProvider = (*StaticWidget)(nil)
	_ Referencer       = (*StaticWidget)(nil)
)

// State document schema version understood by the browser-side manager.
const (
	stateVersionMajor = 2
	stateVersionMinor = 0
)

// ModelState is the serialized snapshot of a single widget.
type ModelState struct {
	ModelName          string         `json:"model_name"`
	ModelModule        string         `json:"model_module"`
	ModelModuleVersion string         `json:"model_module_version"`
	State              map[string]any `json:"state"`
}

// StateDocument maps widget identifiers to their serialized snapshots. This
// is the dependency state needed to reconstruct widgets without a backend.
type StateDocument struct {
	VersionMajor int                   `json:"version_major"`
	VersionMinor int                   `json:"version_minor"`
	State        map[string]ModelState `json:"state"`
}

// DependencyState serializes the given widgets and everything they reference,
// transitively. With dropDefaults, attributes equal to the widget's declared
// defaults are omitted; with allStates, pruning is skipped and every
// reachable widget is snapshotted in full.
func DependencyState(widgets []Widget, dropDefaults, allStates bool) (*StateDocument, error) {
	doc := &StateDocument{
		VersionMajor: stateVersionMajor,
		VersionMinor: stateVersionMinor,
		State:        make(map[string]ModelState),
	}

	seen := make(map[string]bool)
	var visit func(w Widget) error
	visit = func(w Widget) error {
		if w == nil {
			return nil
		}
		id := w.ModelID()
		if id == "" {
			return fmt.Errorf("%w: widget has empty model id", ErrStateSerialize)
		}
		if seen[id] {
			return nil
		}
		seen[id] = true

		doc.State[id] = ModelState{
			ModelName:          w.ModelName(),
			ModelModule:        w.ModelModule(),
			ModelModuleVersion: w.ModelModuleVersion(),
			State:              snapshotState(w, dropDefaults && !allStates),
		}

		if ref, ok := w.(Referencer); ok {
			for _, child := range ref.References() {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, w := range widgets {
		if err := visit(w); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// snapshotState copies a widget's attribute map, optionally dropping entries
// equal to the widget's declared defaults.
func snapshotState(w Widget, dropDefaults bool) map[string]any {
	src := w.State()
	out := make(map[string]any, len(src))

	var defaults map[string]any
	if dropDefaults {
		if dp, ok := w.(DefaultsProvider); ok {
			defaults = dp.Defaults()
		}
	}

	for k, v := range src {
		if defaults != nil {
			if def, ok := defaults[k]; ok && reflect.DeepEqual(def, v) {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// ModelIDs returns the serialized widget identifiers in sorted order.
func (d *StateDocument) ModelIDs() []string {
	ids := make([]string, 0, len(d.State))
	for id := range d.State {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
