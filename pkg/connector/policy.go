// Package connector computes connector paths. It is pure: callers pass
// endpoints, sides and stored waypoints in and get a Shape back.
package connector

// Policy holds the tunable constants of routing.
type Policy struct {
	// AlignmentThreshold is the angle in degrees under which a line
	// attached to an anchor counts as aligned with the host line.
	AlignmentThreshold float64
	// ElbowOffset is the stub length an elbow route runs out from an
	// endpoint before turning back.
	ElbowOffset float64
	// CurveSamples is the number of chords a curve is flattened into.
	CurveSamples int
}

// DefaultPolicy returns the standard routing constants.
func DefaultPolicy() Policy {
	return Policy{
		AlignmentThreshold: 30,
		ElbowOffset:        20,
		CurveSamples:       24,
	}
}
