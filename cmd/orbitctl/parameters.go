package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/tle"
)

var paramFlags orbitFlags

var parametersCmd = &cobra.Command{
	Use:   "parameters",
	Short: "Print derived orbital quantities",
	Long: `
Print period, apsides, speeds, specific energies and J2 secular rates for an
element set given by flags, or by --line1/--line2.
`,
	Args: cobra.NoArgs,
	RunE: runParameters,
}

func init() {
	paramFlags.register(parametersCmd)
	rootCmd.AddCommand(parametersCmd)
}

func runParameters(cmd *cobra.Command, args []string) error {
	var el orbit.Elements
	if paramFlags.line1 != "" || paramFlags.line2 != "" {
		entry, err := tle.ParseLines("", paramFlags.line1, paramFlags.line2)
		if err != nil {
			return err
		}
		el = entry.Elements()
	} else {
		var err error
		if el, err = paramFlags.elements(time.Now().UTC()); err != nil {
			return err
		}
		if err := orbit.Validate(el, nil); err != nil {
			return err
		}
	}
	return printJSON(orbit.ComputeParameters(el))
}
