package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tubecast/internal/errorlog"
)

func newErrorsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Show recent failed conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := errorlog.New(cfg.ErrorLogPath(), cmd.ErrOrStderr())
			records, err := log.Recent(limit)
			if err != nil {
				return fmt.Errorf("read error log: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No errors recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.Timestamp.Local().Format(time.DateTime),
					record.Error.Kind,
					record.Context["stage"],
					truncate(record.Error.Message, 60),
					record.Context["playlist_url"],
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Kind", "Stage", "Message", "Playlist"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Log file: %s\n", log.Path())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of records to show")
	return cmd
}
