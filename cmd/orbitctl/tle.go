package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmewall/orbital-space-objects/internal/tle"
)

const rad2deg = 180 / math.Pi

var (
	tleFetch   bool
	tleURL     string
	tleJSON    bool
	tleTimeout time.Duration
)

var tleCmd = &cobra.Command{
	Use:   "tle [file|-]",
	Short: "Convert two-line element sets to Keplerian elements",
	Long: `
Read 2- or 3-line element sets from a file, stdin ("-") or, with --fetch, from
a URL (CelesTrak space stations by default), and print their Keplerian
elements. Sets with bad checksums are skipped.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTLE,
}

func init() {
	fs := tleCmd.Flags()
	fs.BoolVar(&tleFetch, "fetch", false, "download element sets instead of reading a file")
	fs.StringVar(&tleURL, "url", "", "source URL for --fetch (default CelesTrak stations)")
	fs.BoolVar(&tleJSON, "json", false, "print JSON instead of a table")
	fs.DurationVar(&tleTimeout, "timeout", 30*time.Second, "download timeout")
	rootCmd.AddCommand(tleCmd)
}

type elementsOut struct {
	Name          string    `json:"name"`
	CatalogNumber int       `json:"catalogNumber"`
	Epoch         time.Time `json:"epoch"`
	SemiMajorAxis float64   `json:"semiMajorAxis"` // km
	Eccentricity  float64   `json:"eccentricity"`
	Inclination   float64   `json:"inclination"` // degrees
	RAAN          float64   `json:"raan"`
	ArgPeriapsis  float64   `json:"argPeriapsis"`
	MeanAnomaly   float64   `json:"meanAnomaly"`
	PeriodMinutes float64   `json:"periodMinutes"`
}

func runTLE(cmd *cobra.Command, args []string) error {
	data, err := readTLESource(cmd.Context(), args)
	if err != nil {
		return err
	}

	entries, err := tle.Parse(bytes.NewReader(data), logger)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no valid element sets found")
	}

	out := make([]elementsOut, len(entries))
	for i, e := range entries {
		el := e.Elements()
		out[i] = elementsOut{
			Name:          e.Name,
			CatalogNumber: e.CatalogNumber,
			Epoch:         el.Epoch.UTC(),
			SemiMajorAxis: el.SemiMajorAxis / 1000,
			Eccentricity:  el.Eccentricity,
			Inclination:   el.Inclination * rad2deg,
			RAAN:          el.RAAN * rad2deg,
			ArgPeriapsis:  el.ArgPeriapsis * rad2deg,
			MeanAnomaly:   el.MeanAnomaly * rad2deg,
			PeriodMinutes: el.PeriodSeconds() / 60,
		}
	}

	if tleJSON {
		return printJSON(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATNR\tNAME\tEPOCH\tA (km)\tE\tI (deg)\tRAAN\tARGP\tM\tPERIOD (min)")
	for _, o := range out {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%.7f\t%.4f\t%.4f\t%.4f\t%.4f\t%.2f\n",
			o.CatalogNumber, o.Name, o.Epoch.Format(time.RFC3339),
			o.SemiMajorAxis, o.Eccentricity, o.Inclination, o.RAAN, o.ArgPeriapsis, o.MeanAnomaly, o.PeriodMinutes)
	}
	return tw.Flush()
}

func readTLESource(ctx context.Context, args []string) ([]byte, error) {
	if tleFetch {
		if len(args) > 0 {
			return nil, fmt.Errorf("a file argument cannot be combined with --fetch")
		}
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, tleTimeout)
		defer cancel()

		f := tle.NewFetcher(tleURL, logger)
		logger.Debug("fetching element sets", "url", f.SourceURL())
		return f.Fetch(ctx)
	}

	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
