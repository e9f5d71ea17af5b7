package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	containsCompound string
	containsPoint    string
)

var containsCmd = &cobra.Command{
	Use:   "contains [file]",
	Short: "Test whether a point lies inside a compound",
	Long:  "Narrow the candidate parts with the compound's spatial index, then decide with the exact signed distance of each part.",
	Args:  cobra.ExactArgs(1),
	RunE:  runContains,
}

func init() {
	containsCmd.Flags().StringVar(&containsCompound, "compound", "", "compound name")
	containsCmd.Flags().StringVar(&containsPoint, "point", "", "point to test, as x,y")
	_ = containsCmd.MarkFlagRequired("compound")
	_ = containsCmd.MarkFlagRequired("point")
	rootCmd.AddCommand(containsCmd)
}

func runContains(cmd *cobra.Command, args []string) error {
	p, err := parseVec(containsPoint)
	if err != nil {
		return fmt.Errorf("--point: %w", err)
	}

	app := NewApp(cfg)
	sc, report, err := app.Load(args[0])
	if err != nil {
		writeErrors(cmd.ErrOrStderr(), report)
		return err
	}

	hit, err := app.Contains(sc, containsCompound, p)
	if err != nil {
		return err
	}
	writeHit(cmd.OutOrStdout(), hit)
	return nil
}
