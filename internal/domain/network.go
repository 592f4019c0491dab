package domain

// Link is a directed, weighted connection between two named stops.
type Link struct {
	From     string
	To       string
	Distance float64
}

// NetworkStats summarises the size of the stop network.
type NetworkStats struct {
	Stops int
	Links int
}
