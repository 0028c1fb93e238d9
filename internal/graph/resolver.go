package graph

import "github.com/frc4121/vvpipeline/internal/component"

// NameResolver maps the component ids handed out by AddNamedComponent
// to the ids a compiled PipelineRunner expects. Ids are never
// reassigned or orphan-trimmed by this builder (every registered
// component keeps its registration-order id through Compile), so the
// mapping is the identity — NameResolver exists to satisfy the public
// surface spec §6 names and to give compile a seam for a future
// implementation that does renumber, without breaking callers.
type NameResolver struct {
	byName map[string]component.ID
}

func newResolver(names map[string]component.ID) *NameResolver {
	return &NameResolver{byName: names}
}

// Get resolves old to the id a compiled PipelineRunner expects for the
// same component, or reports false if old was never registered.
func (r *NameResolver) Get(old component.ID) (component.ID, bool) {
	for _, id := range r.byName {
		if id == old {
			return id, true
		}
	}
	return component.PlaceholderID, false
}

// ByName resolves a registered component's name directly to its
// compiled id.
func (r *NameResolver) ByName(name string) (component.ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}
