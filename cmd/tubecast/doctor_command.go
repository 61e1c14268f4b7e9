package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tubecast/internal/deps"
	"tubecast/internal/objectstore"
	"tubecast/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			fmt.Fprintf(out, "Config: %s\n\n", ctx.configPath)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "OK"
				detail := status.Path
				switch {
				case !status.Available && status.Optional:
					state = "WARN"
					detail = status.Detail
				case !status.Available:
					state = "MISSING"
					detail = status.Detail
				}
				rows = append(rows, []string{status.Name, yesNo(!status.Optional), state, detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Required", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			var bucket preflight.BucketChecker
			storageErr := cfg.RequireStorage()
			if storageErr == nil {
				store, err := objectstore.New(objectstore.SettingsFromConfig(cfg))
				if err != nil {
					storageErr = err
				} else {
					bucket = store
				}
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, bucket)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if storageErr != nil {
				fmt.Fprintln(out, renderStatusLine("Object storage", statusWarn, storageErr.Error(), colorize))
			}

			failures := len(preflight.Failed(results))
			if err := deps.Missing(statuses); err != nil {
				failures++
			}
			if failures > 0 {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}
