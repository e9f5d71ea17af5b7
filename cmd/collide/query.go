package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryCompound string
	queryMin      string
	queryMax      string
)

var queryCmd = &cobra.Command{
	Use:   "query [file]",
	Short: "List the parts of a compound whose bounding box meets a region",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryCompound, "compound", "", "compound name")
	queryCmd.Flags().StringVar(&queryMin, "min", "", "lower corner of the region, as x,y")
	queryCmd.Flags().StringVar(&queryMax, "max", "", "upper corner of the region, as x,y")
	_ = queryCmd.MarkFlagRequired("compound")
	_ = queryCmd.MarkFlagRequired("min")
	_ = queryCmd.MarkFlagRequired("max")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	lo, err := parseVec(queryMin)
	if err != nil {
		return fmt.Errorf("--min: %w", err)
	}
	hi, err := parseVec(queryMax)
	if err != nil {
		return fmt.Errorf("--max: %w", err)
	}

	app := NewApp(cfg)
	sc, report, err := app.Load(args[0])
	if err != nil {
		writeErrors(cmd.ErrOrStderr(), report)
		return err
	}

	ids, err := app.Query(sc, queryCompound, lo, hi)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d part(s)\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(out, "%d\n", id)
	}
	return nil
}
