package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/walterwhite-69/Miruro-API/internal/anilist"
)

// searchCmd searches AniList
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search anime on AniList",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		asJSON, _ := cmd.Flags().GetBool("json")

		logger.Debug("searching", "query", query)

		results, err := newMetadataClient(cfg).Search(cmd.Context(), query, anilist.Pagination{
			Page:    page,
			PerPage: perPage,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		info := results.PageInfo
		fmt.Fprintf(out, "Found %s results (page %d of %d):\n\n",
			humanize.Comma(int64(info.Total)), info.CurrentPage, max(info.LastPage, 1))
		for i, media := range results.Results {
			fmt.Fprintf(out, "%d. %s\n", i+1, media.Title)
			fmt.Fprintf(out, "   ID: %d\n", media.ID)
			if media.Status != "" {
				fmt.Fprintf(out, "   Status: %s\n", media.Status)
			}
			if media.Episodes != nil {
				fmt.Fprintf(out, "   Episodes: %d\n", *media.Episodes)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("page", 1, "result page")
	searchCmd.Flags().Int("per-page", 0, "results per page (default from metadata.default_per_page)")
	searchCmd.Flags().Bool("json", false, "print the raw JSON response")
}
