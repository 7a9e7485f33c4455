package transform

import (
	"math"
	"testing"
)

func TestGeodeticToECEF_Magnitude(t *testing.T) {
	// Equator at sea level sits on the WGS-84 equatorial radius.
	eq := GeodeticToECEF(0, 0, 0)
	if math.Abs(eq.Norm()-6378137.0) > 1.0 {
		t.Errorf("equatorial ECEF magnitude = %.1f m, want ~6378137 m", eq.Norm())
	}

	// North pole: polar radius.
	pole := GeodeticToECEF(90, 0, 0)
	if math.Abs(pole.Norm()-6356752.3) > 1.0 {
		t.Errorf("polar ECEF magnitude = %.1f m, want ~6356752 m", pole.Norm())
	}
}

func TestGeodeticToECEF_Altitude(t *testing.T) {
	diff := GeodeticToECEF(0, 0, 100).Norm() - GeodeticToECEF(0, 0, 0).Norm()
	if math.Abs(diff-100.0) > 0.01 {
		t.Errorf("altitude difference = %.3f m, want 100 m", diff)
	}
}

func TestECEFToGeodetic_RoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, alt float64
	}{
		{"equator", 0, 0, 0},
		{"Kourou", 5.236, -52.769, 0},
		{"Baikonur", 45.965, 63.305, 90},
		{"Cape Canaveral LEO", 28.5729, -80.649, 400000},
		{"southern GEO", -10, 170, 35786000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ECEFToGeodetic(GeodeticToECEF(tt.lat, tt.lon, tt.alt))
			if math.Abs(got.LatDeg-tt.lat) > 1e-6 {
				t.Errorf("lat = %.9f, want %.9f", got.LatDeg, tt.lat)
			}
			if math.Abs(got.LonDeg-tt.lon) > 1e-6 {
				t.Errorf("lon = %.9f, want %.9f", got.LonDeg, tt.lon)
			}
			if math.Abs(got.AltM-tt.alt) > 1e-3 {
				t.Errorf("alt = %.4f, want %.4f", got.AltM, tt.alt)
			}
		})
	}
}

func TestLookAnglesFrom_DirectlyOverhead(t *testing.T) {
	site := GeodeticToECEF(0, 0, 0)
	sat := Vector3{X: site.X + 400000, Y: site.Y, Z: site.Z}

	la := LookAnglesFrom(0, 0, sat)
	if math.Abs(la.ElevationDeg-90.0) > 0.1 {
		t.Errorf("overhead elevation = %.2f deg, want ~90", la.ElevationDeg)
	}
	if math.Abs(la.RangeM-400000.0) > 1.0 {
		t.Errorf("overhead range = %.2f m, want ~400000", la.RangeM)
	}
}

func TestLookAnglesFrom_AzimuthDirections(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantAz   float64
	}{
		{"north", 10, 0, 0},
		{"east", 0, 10, 90},
		{"south", -10, 0, 180},
		{"west", 0, -10, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			la := LookAnglesFrom(0, 0, GeodeticToECEF(tt.lat, tt.lon, 400000))
			diff := math.Abs(la.AzimuthDeg - tt.wantAz)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 30 {
				t.Errorf("azimuth = %.2f deg, want near %.0f", la.AzimuthDeg, tt.wantAz)
			}
		})
	}
}
