package report

// Highlight marks a named (N, E) configuration of interest on every rendering
type Highlight struct {
	Name      string `json:"name" yaml:"name" validate:"required"`
	N         int    `json:"n" yaml:"n" validate:"gt=0"`
	E         int    `json:"e" yaml:"e" validate:"gt=0"`
	Marker    string `json:"marker" yaml:"marker"`
	EdgeColor string `json:"edge_color" yaml:"edge_color" validate:"omitempty,hexcolor"`
}

// Highlights is an ordered list; the first match wins
type Highlights []Highlight

// DefaultHighlights returns the configurations under discussion for the current protocol
func DefaultHighlights() Highlights {
	return Highlights{
		{Name: "Current (N=100, E=12)", N: 100, E: 12, Marker: "★", EdgeColor: "#1a1a1a"},
		{Name: "Proposed (N=40, E=12)", N: 40, E: 12, Marker: "●", EdgeColor: "#2c7bb6"},
	}
}

// Lookup returns the first highlight placed on (n, e)
func (h Highlights) Lookup(n, e int) (Highlight, bool) {
	for _, hl := range h {
		if hl.N == n && hl.E == e {
			return hl, true
		}
	}
	return Highlight{}, false
}
