package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/akhenakh/sgp4"

	"github.com/itsmewall/orbital-space-objects/internal/kepler"
	"github.com/itsmewall/orbital-space-objects/internal/orbit"
)

const (
	deg2rad      = math.Pi / 180
	secondsInDay = 86400.0
)

// Parse reads 2-line or 3-line (name first) element sets from r. Sets that
// fail to parse or verify are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []Entry
	for i := 0; i+1 < len(lines); {
		var name string
		if !strings.HasPrefix(lines[i], "1 ") {
			name = lines[i]
			i++
			if i+1 >= len(lines) {
				logger.Warn("skipping truncated TLE entry", "name", name)
				break
			}
		}
		line1, line2 := lines[i], lines[i+1]

		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			// Resynchronize on the next line.
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			if name == "" {
				i++
			}
			continue
		}

		entry, err := ParseLines(name, line1, line2)
		if err != nil {
			logger.Warn("skipping invalid TLE entry", "name", name, "error", err)
			i += 2
			continue
		}
		entries = append(entries, entry)
		i += 2
	}

	return entries, nil
}

// ParseLines parses and checksum-verifies a single element set.
func ParseLines(name, line1, line2 string) (Entry, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	input := line1 + "\n" + line2
	if name = strings.TrimSpace(name); name != "" {
		input = name + "\n" + input
	}

	t, err := sgp4.ParseTLE(input)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing TLE: %w", err)
	}
	if t.MeanMotion <= 0 {
		return Entry{}, fmt.Errorf("parsing TLE: mean motion must be positive, got %g rev/day", t.MeanMotion)
	}

	return Entry{
		CatalogNumber: t.SatelliteNumber,
		Name:          t.Name,
		Epoch:         t.EpochTime(),
		Line1:         line1,
		Line2:         line2,
		Inclination:   t.Inclination,
		RAAN:          t.RightAscension,
		Eccentricity:  t.Eccentricity,
		ArgPerigee:    t.ArgOfPerigee,
		MeanAnomaly:   t.MeanAnomaly,
		MeanMotionRev: t.MeanMotion,
	}, nil
}

// Elements converts the published mean elements to an osculating-style
// Keplerian set. The semi-major axis comes from the mean motion through
// Kepler's third law, a = (μ/n²)^(1/3).
func (e Entry) Elements() orbit.Elements {
	n := e.MeanMotionRev * 2 * math.Pi / secondsInDay
	return orbit.Elements{
		SemiMajorAxis: math.Cbrt(orbit.EarthMu / (n * n)),
		Eccentricity:  e.Eccentricity,
		Inclination:   e.Inclination * deg2rad,
		RAAN:          kepler.NormalizeAngle(e.RAAN * deg2rad),
		ArgPeriapsis:  kepler.NormalizeAngle(e.ArgPerigee * deg2rad),
		MeanAnomaly:   kepler.NormalizeAngle(e.MeanAnomaly * deg2rad),
		Epoch:         e.Epoch,
	}
}
