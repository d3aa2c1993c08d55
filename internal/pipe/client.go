package pipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/walterwhite-69/Miruro-API/internal/jsonvalue"
	"github.com/walterwhite-69/Miruro-API/internal/upstream"
)

// Pipe operation paths
const (
	PathEpisodes = "episodes"
	PathSources  = "sources"
)

// DefaultCategory is used when a sources request does not name one
const DefaultCategory = "sub"

// Config is the immutable pipe endpoint configuration
type Config struct {
	Endpoint string
}

// SourcesRequest identifies one episode's stream sources
type SourcesRequest struct {
	// EpisodeID is the plain composite id, e.g. "animepahe:6444:72975:1"
	EpisodeID string
	Provider  string
	AnilistID int
	Category  string
}

// Client performs episode and source lookups against the pipe endpoint
type Client struct {
	cfg    Config
	http   *upstream.Client
	logger *slog.Logger
}

// NewClient creates a pipe client. httpClient must already carry the
// User-Agent and Referer headers the endpoint requires.
func NewClient(cfg Config, httpClient *upstream.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}
}

// BuildEpisodesIntent returns the intent for an episode listing
func BuildEpisodesIntent(anilistID int) RequestIntent {
	return NewRequestIntent(PathEpisodes, map[string]any{
		"anilistId": anilistID,
	})
}

// BuildSourcesIntent returns the intent for a source lookup, re-encoding the episode id
func BuildSourcesIntent(req SourcesRequest) RequestIntent {
	category := req.Category
	if category == "" {
		category = DefaultCategory
	}
	return NewRequestIntent(PathSources, map[string]any{
		"episodeId": EncodeIdentifier(req.EpisodeID),
		"provider":  req.Provider,
		"category":  category,
		"anilistId": req.AnilistID,
	})
}

// FetchEpisodes returns the provider/episode map for an AniList id with every
// nested episode id decoded to plain text.
func (c *Client) FetchEpisodes(ctx context.Context, anilistID int) (*jsonvalue.Value, error) {
	payload, err := c.call(ctx, BuildEpisodesIntent(anilistID))
	if err != nil {
		return nil, err
	}

	n := TranslateInPlace(payload)
	c.logger.Debug("translated episode ids", "anilist_id", anilistID, "count", n)

	return payload, nil
}

// FetchSources returns the stream sources for one episode
func (c *Client) FetchSources(ctx context.Context, req SourcesRequest) (*jsonvalue.Value, error) {
	return c.call(ctx, BuildSourcesIntent(req))
}

func (c *Client) call(ctx context.Context, intent RequestIntent) (*jsonvalue.Value, error) {
	resp, err := c.http.Get(ctx, c.cfg.Endpoint, map[string]string{
		"e": EncodeRequest(intent),
	})
	if err != nil {
		return nil, fmt.Errorf("pipe %s request: %w", intent.Path, err)
	}

	payload, err := DecodeResponse(strings.TrimSpace(resp.String()))
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			c.logger.Warn("pipe response decode failed",
				"path", intent.Path,
				"stage", decodeErr.Stage,
				"error", decodeErr.Err,
			)
		}
		return nil, err
	}

	return payload, nil
}
