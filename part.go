package parts

// Part is an immutable descriptor for a self-contained unit of state: a unique
// name (its dispatch target), the owner key its state lives under in the
// composite state object, and the reducer that updates it. Parts are created
// once and treated as read-only for the lifetime of the process.
type Part struct {
	Name    string
	Owner   string
	Reducer Reducer
}

// PartOption configures optional fields on Part construction.
type PartOption func(*Part)

// WithOwner sets the owner key the part's state lives under. When omitted the
// owner defaults to the part name.
func WithOwner(owner string) PartOption {
	return func(p *Part) {
		p.Owner = owner
	}
}

// NewPart builds a Part descriptor. The owner key defaults to name.
func NewPart(name string, reducer Reducer, opts ...PartOption) Part {
	part := Part{
		Name:    name,
		Owner:   name,
		Reducer: reducer,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&part)
	}
	if part.Owner == "" {
		part.Owner = part.Name
	}
	return part
}

// Stateful reports whether the part carries everything needed to own a slice
// of composite state.
func (p Part) Stateful() bool {
	return p.Name != "" && p.Owner != "" && p.Reducer != nil
}

// PartMap is the registry used to route part actions, keyed by part target
// identifier. It is built once at reducer construction time and never
// modified afterward.
type PartMap map[string]Part

// NewPartMap indexes the supplied parts by name. Parts that are not stateful
// are skipped; when names collide the later part wins.
func NewPartMap(list ...Part) PartMap {
	m := make(PartMap, len(list))
	for _, part := range list {
		if !part.Stateful() {
			continue
		}
		m[part.Name] = part
	}
	return m
}

// Lookup returns the part registered under target.
func (m PartMap) Lookup(target string) (Part, bool) {
	part, ok := m[target]
	return part, ok
}
