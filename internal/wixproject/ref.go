package wixproject

// Ref is the outcome of resolving a directory to an installer identifier.
// An unresolved Ref carries the reason instead of an id, so callers have to
// decide how to proceed when the structure they need does not exist yet.
type Ref struct {
	id       string
	reason   string
	resolved bool
}

// Resolved returns a Ref for an existing identifier.
func Resolved(id string) Ref {
	return Ref{id: id, resolved: true}
}

// Unresolved returns a Ref describing why no identifier could be found.
func Unresolved(reason string) Ref {
	return Ref{reason: reason}
}

// ID returns the identifier and whether the Ref is resolved.
func (r Ref) ID() (string, bool) {
	return r.id, r.resolved
}

// IsResolved reports whether the Ref carries an identifier.
func (r Ref) IsResolved() bool {
	return r.resolved
}

// Reason explains an unresolved Ref. It is empty for resolved refs.
func (r Ref) Reason() string {
	return r.reason
}

// String returns the id, or the reason for unresolved refs.
func (r Ref) String() string {
	if r.resolved {
		return r.id
	}
	return "unresolved: " + r.reason
}
