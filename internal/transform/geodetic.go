package transform

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

const deg2rad = math.Pi / 180.0

// GeodeticPoint holds a geodetic position (latitude/longitude in degrees,
// altitude in meters above the WGS-84 ellipsoid).
type GeodeticPoint struct {
	LatDeg, LonDeg, AltM float64
}

// LookAngles holds azimuth, elevation, and range from a ground site to a
// satellite.
type LookAngles struct {
	AzimuthDeg   float64 // 0 = North, clockwise
	ElevationDeg float64 // 0 = horizon, 90 = zenith
	RangeM       float64
}

// GeodeticToECEF converts geodetic coordinates (degrees, meters above the
// WGS-84 ellipsoid) to an Earth-fixed position in meters.
func GeodeticToECEF(latDeg, lonDeg, altM float64) Vector3 {
	sinLat, cosLat := math.Sincos(latDeg * deg2rad)
	sinLon, cosLon := math.Sincos(lonDeg * deg2rad)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Vector3{
		X: (n + altM) * cosLat * cosLon,
		Y: (n + altM) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + altM) * sinLat,
	}
}

// ECEFToGeodetic converts an Earth-fixed position (meters) to geodetic
// coordinates using the iterative Bowring method. Converges in 2-3
// iterations for Earth orbits.
func ECEFToGeodetic(p Vector3) GeodeticPoint {
	lon := math.Atan2(p.Y, p.X)
	rho := math.Hypot(p.X, p.Y)

	lat := math.Atan2(p.Z, rho*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(p.Z+wgs84E2*n*sinLat, rho)
	}

	sinLat, cosLat := math.Sincos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = rho/cosLat - n
	} else {
		alt = math.Abs(p.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return GeodeticPoint{
		LatDeg: lat / deg2rad,
		LonDeg: lon / deg2rad,
		AltM:   alt,
	}
}

// LookAnglesFrom computes azimuth, elevation and range from a ground site
// (geodetic degrees) to a satellite's Earth-fixed position.
//
// Uses the SEZ (South-East-Zenith) topocentric rotation per Vallado Section 4.4.
func LookAnglesFrom(latDeg, lonDeg float64, sat Vector3) LookAngles {
	site := GeodeticToECEF(latDeg, lonDeg, 0)
	r := sat.Sub(site)

	sinLat, cosLat := math.Sincos(latDeg * deg2rad)
	sinLon, cosLon := math.Sincos(lonDeg * deg2rad)

	south := sinLat*cosLon*r.X + sinLat*sinLon*r.Y - cosLat*r.Z
	east := -sinLon*r.X + cosLon*r.Y
	zenith := cosLat*cosLon*r.X + cosLat*sinLon*r.Y + sinLat*r.Z

	rng := math.Sqrt(south*south + east*east + zenith*zenith)
	el := math.Asin(zenith / rng)

	// In SEZ, North = -South.
	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		AzimuthDeg:   az / deg2rad,
		ElevationDeg: el / deg2rad,
		RangeM:       rng,
	}
}
