package generator

// Config drives the synthetic transit network generator.
type Config struct {
	NumLines       int
	StopsPerLine   int
	TransferChance float64 // chance that a stop gains a walking link to another line
	MinDistance    float64
	MaxDistance    float64
	NumQueries     int
	Seed           int64
}

// DefaultConfig returns a city-sized network that still solves quickly.
func DefaultConfig() Config {
	return Config{
		NumLines:       8,
		StopsPerLine:   25,
		TransferChance: 0.15,
		MinDistance:    0.4,
		MaxDistance:    3.5,
		NumQueries:     500,
		Seed:           42,
	}
}
