package cloud

import "fmt"

// ConfigurationError reports an invalid or missing generation parameter.
// It is always raised before any placement work begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cloud: bad %s: %s", e.Field, e.Reason)
}

// PlacementError reports that rejection sampling could not place a particle
// within its attempt budget. The ensemble under construction is discarded;
// the caller decides whether to retry with a relaxed configuration.
type PlacementError struct {
	// Species is the material identifier of the particle that failed.
	Species string
	// Index is the position the particle would have taken in the ensemble.
	Index int
	// Attempts is the number of rejected placements.
	Attempts int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf(
		"cloud: could not place particle %d (%s) after %d attempts",
		e.Index, e.Species, e.Attempts,
	)
}
