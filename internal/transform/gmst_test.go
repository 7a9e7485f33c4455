package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// angleDiff returns the absolute difference of two angles in radians,
// accounting for wrap-around at 2π.
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// TestJulianDate verifies the Julian Date conversion against known values.
func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{
			name:     "J2000.0 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
		},
		{
			// Vallado Example 3-15: April 6, 2004, 07:51:28.386 UTC
			name:     "Vallado example date",
			time:     time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC),
			expected: 2453101.827411875,
		},
		{
			name:     "non-UTC location is converted",
			time:     time.Date(2000, 1, 1, 14, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			expected: 2451545.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			diff := math.Abs(got - tt.expected)
			if diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.expected, diff)
			}
		})
	}
}

func TestSplitJulian(t *testing.T) {
	tm := time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC)
	day, sec := SplitJulian(tm)

	if day != 2453101.5 {
		t.Errorf("day = %.4f, want 2453101.5", day)
	}
	wantSec := 7*3600 + 51*60 + 28.386009
	if math.Abs(sec-wantSec) > 1e-9 {
		t.Errorf("seconds = %.9f, want %.9f", sec, wantSec)
	}
	if math.Abs(day+sec/86400-JulianDate(tm)) > 1e-8 {
		t.Errorf("split parts do not recombine to JulianDate")
	}
}

// TestGMSTPolynomialJ2000 checks the reference value of the sidereal-time
// polynomial at its own epoch.
func TestGMSTPolynomialJ2000(t *testing.T) {
	got := gmstDegrees(0, 0)
	if math.Abs(got-280.46061837) > 1e-9 {
		t.Errorf("gmstDegrees(J2000) = %.10f, want 280.46061837", got)
	}

	rad := GMST(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(rad-280.46061837*math.Pi/180) > 1e-9 {
		t.Errorf("GMST(J2000) = %.12f rad, want %.12f", rad, 280.46061837*math.Pi/180)
	}
}

func TestGMSTRange(t *testing.T) {
	start := time.Date(1995, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		tm := start.Add(time.Duration(i) * 17 * time.Hour)
		g := GMST(tm)
		if g < 0 || g >= 2*math.Pi {
			t.Fatalf("GMST(%v) = %f, outside [0, 2π)", tm, g)
		}
	}
}

// TestGMST validates the GMST calculation against go-satellite's
// GSTimeFromDate (IAU-82 in seconds of time) and meeus' sidereal.Mean.
// All three are the same model written differently.
func TestGMST(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
	}{
		{"J2000.0 epoch", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"Vallado example date", time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC)},
		{"recent date 2026", time.Date(2026, 2, 6, 4, 1, 0, 0, time.UTC)},
		{"before J2000", time.Date(1987, 4, 10, 19, 21, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			our := GMST(tt.time)

			ref := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)
			if diff := angleDiff(our, ref); diff > 1e-7 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tt.time, our, ref, diff)
			}

			meeus := float64(sidereal.Mean(JulianDate(tt.time))) / 86400 * 2 * math.Pi
			if diff := angleDiff(our, meeus); diff > 1e-7 {
				t.Errorf("GMST(%v) = %.12f rad, meeus = %.12f rad (diff=%.2e)", tt.time, our, meeus, diff)
			}
		})
	}
}

// TestGMSTMeeusExample12b uses Meeus Example 12.b: 1987 April 10, 19h21m00s UT
// has mean sidereal time 8h34m57.0896s.
func TestGMSTMeeusExample12b(t *testing.T) {
	tm := time.Date(1987, 4, 10, 19, 21, 0, 0, time.UTC)
	want := (8*3600 + 34*60 + 57.0896) / 86400 * 2 * math.Pi
	if diff := angleDiff(GMST(tm), want); diff > 1e-7 {
		t.Errorf("GMST = %.10f rad, want %.10f (diff=%.2e)", GMST(tm), want, diff)
	}
}
