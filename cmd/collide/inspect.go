package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Evaluate a scene and print every compound's bounding boxes",
	Long:  "Show each compound with its overall AABB and the AABB of every part, followed by validation warnings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	app := NewApp(cfg)
	_, report, err := app.Load(args[0])

	if inspectJSON {
		if report.Compounds == nil && err != nil {
			return err
		}
		if jerr := writeJSON(cmd.OutOrStdout(), report); jerr != nil {
			return jerr
		}
		if err != nil {
			return fmt.Errorf("%d evaluation error(s)", len(report.Errors))
		}
		return nil
	}

	if err != nil {
		writeErrors(cmd.ErrOrStderr(), report)
		return err
	}
	writeReport(cmd.OutOrStdout(), report)
	return nil
}
