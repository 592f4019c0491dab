package domain

// Leg is one hop of a route.
type Leg struct {
	From     string
	To       string
	Distance float64
}

// Route is a resolved shortest path between two stops.
type Route struct {
	Start    string
	End      string
	Stops    []string
	Legs     []Leg
	Distance float64
}

// Hops returns the number of legs travelled.
func (r Route) Hops() int {
	return len(r.Legs)
}
