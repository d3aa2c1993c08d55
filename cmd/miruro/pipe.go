package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/walterwhite-69/Miruro-API/internal/jsonvalue"
	"github.com/walterwhite-69/Miruro-API/internal/pipe"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes <anilist-id>",
	Short: "Fetch the episode lists of an anime from the pipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anilistID, err := parseAnilistID(args[0])
		if err != nil {
			return err
		}

		payload, err := newPipeClient(cfg).FetchEpisodes(cmd.Context(), anilistID)
		if err != nil {
			return fmt.Errorf("failed to fetch episodes: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), payload)
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <episode-id> <provider> <anilist-id>",
	Short: "Fetch the stream sources of one episode from the pipe",
	Example: `  miruro sources animepahe:6444:72975:1 kiwi 178005
  miruro sources animepahe:6444:72975:1 kiwi 178005 --category dub`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sourcesRequest(cmd, args)
		if err != nil {
			return err
		}

		payload, err := newPipeClient(cfg).FetchSources(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to fetch sources: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), payload)
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [blob]",
	Short: "Decode a captured pipe response",
	Long: `Decode a base64url gzip pipe response and print it as JSON.
The blob is read from stdin when no argument (or "-") is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := readInput(cmd, args, "blob")
		if err != nil {
			return err
		}

		payload, err := pipe.DecodeResponse(blob)
		if err != nil {
			return err
		}

		if translate, _ := cmd.Flags().GetBool("translate"); translate {
			n := pipe.TranslateInPlace(payload)
			logger.Debug("translated ids", "count", n)
		}
		return printJSON(cmd.OutOrStdout(), payload)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print pipe request envelopes",
}

var encodeEpisodesCmd = &cobra.Command{
	Use:   "episodes <anilist-id>",
	Short: "Print the envelope of an episodes request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anilistID, err := parseAnilistID(args[0])
		if err != nil {
			return err
		}
		return printIntent(cmd, pipe.BuildEpisodesIntent(anilistID))
	},
}

var encodeSourcesCmd = &cobra.Command{
	Use:   "sources <episode-id> <provider> <anilist-id>",
	Short: "Print the envelope of a sources request",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sourcesRequest(cmd, args)
		if err != nil {
			return err
		}
		return printIntent(cmd, pipe.BuildSourcesIntent(req))
	},
}

var encodeResponseCmd = &cobra.Command{
	Use:   "response [json]",
	Short: "Wrap a JSON document the way the pipe answers",
	Long: `Gzip and base64url encode a JSON document into a pipe response blob,
for building fixtures. The document is read from stdin when no argument (or "-") is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readInput(cmd, args, "document")
		if err != nil {
			return err
		}
		if _, err := jsonvalue.Parse([]byte(doc)); err != nil {
			return fmt.Errorf("invalid JSON document: %w", err)
		}

		blob, err := pipe.EncodeResponse([]byte(doc))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), blob)
		return nil
	},
}

func init() {
	sourcesCmd.Flags().String("category", pipe.DefaultCategory, "sub or dub")
	encodeSourcesCmd.Flags().String("category", pipe.DefaultCategory, "sub or dub")
	decodeCmd.Flags().Bool("translate", false, "decode nested episode ids")
	encodeCmd.PersistentFlags().Bool("url", false, "print the full request URL instead of the bare envelope")
	encodeCmd.PersistentFlags().Bool("show-intent", false, "print the JSON intent before the envelope")

	encodeCmd.AddCommand(encodeEpisodesCmd)
	encodeCmd.AddCommand(encodeSourcesCmd)
	encodeCmd.AddCommand(encodeResponseCmd)
}

func parseAnilistID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid anilist id %q", s)
	}
	return id, nil
}

func sourcesRequest(cmd *cobra.Command, args []string) (pipe.SourcesRequest, error) {
	anilistID, err := parseAnilistID(args[2])
	if err != nil {
		return pipe.SourcesRequest{}, err
	}
	category, _ := cmd.Flags().GetString("category")

	return pipe.SourcesRequest{
		EpisodeID: args[0],
		Provider:  args[1],
		AnilistID: anilistID,
		Category:  category,
	}, nil
}

func printIntent(cmd *cobra.Command, intent pipe.RequestIntent) error {
	out := cmd.OutOrStdout()

	if show, _ := cmd.Flags().GetBool("show-intent"); show {
		data, err := json.MarshalIndent(intent, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal intent: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}

	envelope := pipe.EncodeRequest(intent)
	if full, _ := cmd.Flags().GetBool("url"); full {
		fmt.Fprintf(out, "%s?e=%s\n", cfg.Pipe.Endpoint, url.QueryEscape(envelope))
		return nil
	}
	fmt.Fprintln(out, envelope)
	return nil
}

func printJSON(w io.Writer, v *jsonvalue.Value) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

var isTerminal = func(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// readInput returns the single argument, or everything piped on stdin when the
// argument is absent or "-". An interactive stdin is refused instead of blocking.
func readInput(cmd *cobra.Command, args []string, what string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", fmt.Errorf("no %s given: pass it as an argument or pipe it on stdin", what)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
