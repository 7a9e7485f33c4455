package transform

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00).
const j2000 = 2451545.0

const secondsPerDay = 86400.0

// JulianDate converts a time.Time to a Julian Date. The time is taken as UTC.
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// SplitJulian returns the Julian day number at 0h UTC (always ending in .5)
// and the seconds elapsed since then. Keeping the two parts apart avoids
// losing sub-millisecond precision in the large day number.
func SplitJulian(t time.Time) (day, seconds float64) {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return JulianDate(midnight), t.Sub(midnight).Seconds()
}

// gmstDegrees returns Greenwich Mean Sidereal Time in degrees, normalized to
// [0, 360), with the days since J2000 passed as a whole part and a
// seconds-of-day part.
//
// Formula (Meeus, "Astronomical Algorithms", Eq 12.4):
//
//	θ₀ = 280.46061837 + 360.98564736629·(JD − 2451545) + 0.000387933·T² − T³/38710000
//
// where T is Julian centuries since J2000.0.
func gmstDegrees(days, seconds float64) float64 {
	d := days + seconds/secondsPerDay
	t := d / 36525.0

	// The linear term dominates and is where precision is lost; evaluate the
	// whole-day and fractional-day contributions separately.
	deg := 280.46061837 +
		360.98564736629*days +
		360.98564736629*seconds/secondsPerDay +
		0.000387933*t*t -
		t*t*t/38710000.0

	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// GMST calculates Greenwich Mean Sidereal Time in radians, in [0, 2π), for a
// given UTC time.
func GMST(t time.Time) float64 {
	day, sec := SplitJulian(t)
	return gmstDegrees(day-j2000, sec) * math.Pi / 180.0
}
