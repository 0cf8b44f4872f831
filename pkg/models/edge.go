package models

// Edge is a directed connection between two nodes of the same workflow.
// Condition, when set, names the output port of the source node that
// activates this edge ("true"/"false" for conditionals, a case label for
// switches). An empty condition matches the default output port.
type Edge struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"    validate:"required"`
	Target    string            `json:"target"    validate:"required"`
	Condition string            `json:"condition,omitempty"`
	Mappings  map[string]string `json:"mappings,omitempty"`
}

// MatchesPort reports whether the edge activates for the given output port.
func (e *Edge) MatchesPort(port string) bool {
	if e.Condition == "" {
		return port == DefaultOutputPort || port == ""
	}

	return e.Condition == port
}
