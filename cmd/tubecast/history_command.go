package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubecast/internal/history"
	"tubecast/internal/objectstore"
)

const defaultListLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var search string
	var limit int
	var verify bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List published feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger := history.New(cfg.HistoryPath(), nil)

			var entries []history.Entry
			if strings.TrimSpace(search) != "" {
				entries, err = ledger.Search(search)
				if err == nil && limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
			} else {
				entries, err = ledger.Recent(limit)
			}
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}

			var reachable map[string]string
			if verify {
				if err := cfg.RequireStorage(); err != nil {
					return err
				}
				store, err := objectstore.New(objectstore.SettingsFromConfig(cfg))
				if err != nil {
					return err
				}
				reachable = make(map[string]string, len(entries))
				for _, entry := range entries {
					key := feedKeyFromURL(cfg.Storage.PublicURL, entry.FeedURL)
					if key == "" {
						reachable[entry.ID] = "unknown"
						continue
					}
					exists, err := store.Exists(cmd.Context(), key)
					switch {
					case err != nil:
						reachable[entry.ID] = "error"
					default:
						reachable[entry.ID] = yesNo(exists)
					}
				}
			}

			headers := []string{"Created", "Playlist", "Channel", "Episodes", "Feed URL"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			if verify {
				headers = append(headers, "Online")
				aligns = append(aligns, alignLeft)
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				row := []string{
					entry.CreatedAt.Local().Format(time.DateTime),
					truncate(entry.PlaylistTitle, 40),
					truncate(entry.ChannelName, 24),
					strconv.Itoa(entry.EpisodeCount),
					entry.FeedURL,
				}
				if verify {
					row = append(row, reachable[entry.ID])
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by playlist title, channel, or URL")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check that each feed still exists in the bucket")
	return cmd
}

// feedKeyFromURL recovers the object key of a feed published under publicURL.
// It returns "" when feedURL lives elsewhere.
func feedKeyFromURL(publicURL, feedURL string) string {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/") + "/"
	if base == "/" || !strings.HasPrefix(feedURL, base) {
		return ""
	}
	key, err := url.PathUnescape(strings.TrimPrefix(feedURL, base))
	if err != nil || !strings.HasSuffix(key, "/feed.xml") {
		return ""
	}
	slug := strings.TrimSuffix(strings.TrimPrefix(key, "podcasts/"), "/feed.xml")
	if slug == "" || strings.Contains(slug, "/") {
		return ""
	}
	return objectstore.FeedKey(slug)
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
