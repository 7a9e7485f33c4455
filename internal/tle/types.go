// Package tle reads NORAD two-line element sets and converts them into
// Keplerian elements.
package tle

import "time"

// Entry is one checksum-verified element set.
type Entry struct {
	CatalogNumber int
	Name          string
	Epoch         time.Time
	Line1         string
	Line2         string

	// Mean elements as published: angles in degrees, mean motion in rev/day.
	Inclination   float64
	RAAN          float64
	Eccentricity  float64
	ArgPerigee    float64
	MeanAnomaly   float64
	MeanMotionRev float64
}
