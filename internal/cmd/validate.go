package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/config"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input-file>",
	Short: "Check input coordinates without submitting anything",
	Long: `Validate parses and normalizes every line of the input file exactly
as the run command would, printing a per-line verdict. No browser is
launched and nothing is submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lines, err := readLines(args[0])
	if err != nil {
		return err
	}

	norm, err := buildNormalizer(cfg.Coordinates)
	if err != nil {
		return err
	}
	results := norm.NormalizeLines(lines)

	out := cmd.OutOrStdout()
	bad := 0
	for _, res := range results {
		if res.Err != nil {
			bad++
			var verr *errors.ValidationError
			kind := "invalid"
			if errors.As(res.Err, &verr) {
				kind = string(verr.Kind)
			}
			fmt.Fprintf(out, "line %d: rejected (%s): %v\n", res.Line, kind, res.Err)
			continue
		}

		acc, ok := coordinate.Accession(res.Coord.Chrom, res.Coord.Assembly)
		if !ok {
			bad++
			fmt.Fprintf(out, "line %d: rejected (%s): no accession for %s on %s\n",
				res.Line, errors.MalformedInput, res.Coord.ChrName(), res.Coord.Assembly)
			continue
		}

		fmt.Fprintf(out, "line %d: ok %s (%s) -> %s\n", res.Line, res.Coord.String(), res.Coord.Assembly, acc)
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d lines failed validation", bad, len(results))
	}
	fmt.Fprintf(out, "all %d lines valid\n", len(results))
	return nil
}
