// Package anilist queries the AniList GraphQL API and shapes its answers into
// the flat result types served by the HTTP surface.
package anilist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sahilm/fuzzy"

	"github.com/walterwhite-69/Miruro-API/internal/upstream"
)

const (
	// DefaultEndpoint is the public AniList GraphQL API
	DefaultEndpoint = "https://graphql.anilist.co"

	DefaultPerPage = 20
	MaxPerPage     = 50

	// SuggestionLimit caps the number of autocomplete hits
	SuggestionLimit = 8
)

// ErrNotFound is returned when AniList answers without the requested media
var ErrNotFound = errors.New("media not found")

// Config contains configuration for the AniList client
type Config struct {
	Endpoint       string
	DefaultPerPage int
	MaxPerPage     int
	// StripHTML converts descriptions to plain text
	StripHTML bool
}

// Client performs metadata lookups against AniList
type Client struct {
	cfg    Config
	http   *upstream.Client
	logger *slog.Logger
}

// NewClient creates a new AniList client
func NewClient(cfg Config, httpClient *upstream.Client, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxPerPage <= 0 {
		cfg.MaxPerPage = MaxPerPage
	}
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = DefaultPerPage
	}
	cfg.DefaultPerPage = min(cfg.DefaultPerPage, cfg.MaxPerPage)
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}
}

// Paginate fills in defaults and clamps p. PerPage 0 selects the default.
func (c *Client) Paginate(p Pagination) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage == 0:
		p.PerPage = c.cfg.DefaultPerPage
	case p.PerPage < 1:
		p.PerPage = 1
	case p.PerPage > c.cfg.MaxPerPage:
		p.PerPage = c.cfg.MaxPerPage
	}
	return p
}

// Search finds anime by title
func (c *Client) Search(ctx context.Context, search string, p Pagination) (*ResultPage, error) {
	p = c.Paginate(p)

	var result struct {
		Page struct {
			PageInfo anilistPageInfo `json:"pageInfo"`
			Media    []anilistMedia  `json:"media"`
		} `json:"Page"`
	}

	err := c.query(ctx, searchQuery, map[string]any{
		"search":  search,
		"page":    p.Page,
		"perPage": p.PerPage,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &ResultPage{
		Results:  toMediaResults(result.Page.Media),
		PageInfo: toPageInfo(result.Page.PageInfo),
	}, nil
}

// Collection fetches a preset sorted and optionally status filtered list
func (c *Client) Collection(ctx context.Context, coll Collection, p Pagination) (*ResultPage, error) {
	p = c.Paginate(p)

	variables := map[string]any{
		"page":    p.Page,
		"perPage": p.PerPage,
		"sort":    []string{coll.Sort},
	}
	if coll.Status != "" {
		variables["status"] = coll.Status
	}

	var result struct {
		Page struct {
			PageInfo anilistPageInfo `json:"pageInfo"`
			Media    []anilistMedia  `json:"media"`
		} `json:"Page"`
	}
	if err := c.query(ctx, collectionQuery, variables, &result); err != nil {
		return nil, err
	}

	return &ResultPage{
		Results:  toMediaResults(result.Page.Media),
		PageInfo: toPageInfo(result.Page.PageInfo),
	}, nil
}

// Schedule lists episodes that have not aired yet, soonest first
func (c *Client) Schedule(ctx context.Context, p Pagination) (*SchedulePage, error) {
	p = c.Paginate(p)

	var result struct {
		Page struct {
			PageInfo        anilistPageInfo   `json:"pageInfo"`
			AiringSchedules []anilistSchedule `json:"airingSchedules"`
		} `json:"Page"`
	}
	err := c.query(ctx, scheduleQuery, map[string]any{
		"page":    p.Page,
		"perPage": p.PerPage,
	}, &result)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, len(result.Page.AiringSchedules))
	for _, s := range result.Page.AiringSchedules {
		entries = append(entries, ScheduleEntry{
			ID:          s.Media.ID,
			Title:       s.Media.Title.preferred(),
			Poster:      s.Media.CoverImage.Large,
			NextEpisode: s.Episode,
			AiringAt:    s.AiringAt,
		})
	}

	return &SchedulePage{
		Results:  entries,
		PageInfo: toPageInfo(result.Page.PageInfo),
	}, nil
}

// Info returns the detailed view of one anime
func (c *Client) Info(ctx context.Context, id int) (*MediaInfo, error) {
	var result struct {
		Media *anilistMedia `json:"Media"`
	}
	if err := c.query(ctx, infoQuery, map[string]any{"id": id}, &result); err != nil {
		return nil, err
	}
	if result.Media == nil {
		return nil, ErrNotFound
	}

	m := result.Media
	description := m.Description
	if c.cfg.StripHTML {
		description = plainText(description)
	}

	studios := make([]string, 0, len(m.Studios.Nodes))
	for _, s := range m.Studios.Nodes {
		studios = append(studios, s.Name)
	}

	info := &MediaInfo{
		ID: m.ID,
		Title: Title{
			Romaji:  m.Title.Romaji,
			English: m.Title.English,
			Native:  m.Title.Native,
		},
		Description:  description,
		CoverImage:   m.CoverImage.Large,
		BannerImage:  m.BannerImage,
		Genres:       m.Genres,
		AverageScore: m.AverageScore,
		Popularity:   m.Popularity,
		Episodes:     m.Episodes,
		Duration:     m.Duration,
		Status:       m.Status,
		Format:       m.Format,
		Season:       m.Season,
		SeasonYear:   m.SeasonYear,
		StartDate:    toFuzzyDate(m.StartDate),
		EndDate:      toFuzzyDate(m.EndDate),
		Studios:      studios,
		Synonyms:     m.Synonyms,
	}
	if m.NextAiringEpisode != nil {
		info.NextAiringEpisode = &AiringEpisode{
			Episode:         m.NextAiringEpisode.Episode,
			AiringAt:        m.NextAiringEpisode.AiringAt,
			TimeUntilAiring: m.NextAiringEpisode.TimeUntilAiring,
		}
	}

	return info, nil
}

// Filter searches anime by genre, tag, season, format and status
func (c *Client) Filter(ctx context.Context, opts FilterOptions, p Pagination) (*ResultPage, error) {
	p = c.Paginate(p)

	sort := strings.ToUpper(opts.Sort)
	if sort == "" {
		sort = Popular.Sort
	}
	variables := map[string]any{
		"page":    p.Page,
		"perPage": p.PerPage,
		"sort":    []string{sort},
	}
	if opts.Genre != "" {
		variables["genre"] = opts.Genre
	}
	if opts.Tag != "" {
		variables["tag"] = opts.Tag
	}
	if opts.Year > 0 {
		variables["seasonYear"] = opts.Year
	}
	if opts.Season != "" {
		variables["season"] = strings.ToUpper(opts.Season)
	}
	if opts.Format != "" {
		variables["format"] = strings.ToUpper(opts.Format)
	}
	if opts.Status != "" {
		variables["status"] = strings.ToUpper(opts.Status)
	}

	var result struct {
		Page struct {
			PageInfo anilistPageInfo `json:"pageInfo"`
			Media    []anilistMedia  `json:"media"`
		} `json:"Page"`
	}
	if err := c.query(ctx, filterQuery, variables, &result); err != nil {
		return nil, err
	}

	return &ResultPage{
		Results:  toMediaResults(result.Page.Media),
		PageInfo: toPageInfo(result.Page.PageInfo),
	}, nil
}

// suggestionSource adapts AniList hits for fuzzy matching on their display titles
type suggestionSource []anilistMedia

func (s suggestionSource) String(i int) string {
	t := s[i].Title
	return strings.TrimSpace(t.English + " " + t.Romaji)
}

func (s suggestionSource) Len() int {
	return len(s)
}

// Suggestions returns a short list of titles for autocomplete. AniList hits
// that fuzzy match query come first, best match first; the rest keep
// AniList's order.
func (c *Client) Suggestions(ctx context.Context, query string) ([]Suggestion, error) {
	var result struct {
		Page struct {
			Media []anilistMedia `json:"media"`
		} `json:"Page"`
	}
	err := c.query(ctx, suggestionsQuery, map[string]any{
		"search":  query,
		"perPage": SuggestionLimit,
	}, &result)
	if err != nil {
		return nil, err
	}

	media := result.Page.Media
	order := rankSuggestions(query, media)

	suggestions := make([]Suggestion, 0, len(order))
	for _, i := range order {
		m := media[i]
		suggestions = append(suggestions, Suggestion{
			ID:     m.ID,
			Title:  m.Title.preferred(),
			Native: m.Title.Native,
			Poster: m.CoverImage.Large,
			Format: m.Format,
			Year:   m.SeasonYear,
		})
	}
	return suggestions, nil
}

// rankSuggestions returns indexes into media, fuzzy matches first
func rankSuggestions(query string, media []anilistMedia) []int {
	matches := fuzzy.FindFrom(query, suggestionSource(media))

	order := make([]int, 0, len(media))
	seen := make(map[int]bool, len(media))
	for _, match := range matches {
		order = append(order, match.Index)
		seen[match.Index] = true
	}
	for i := range media {
		if !seen[i] {
			order = append(order, i)
		}
	}
	return order
}

// Characters lists the characters of an anime with their Japanese voice actors
func (c *Client) Characters(ctx context.Context, id int, p Pagination) (*CharacterPage, error) {
	p = c.Paginate(p)

	var result struct {
		Media *struct {
			Characters struct {
				PageInfo anilistPageInfo        `json:"pageInfo"`
				Edges    []anilistCharacterEdge `json:"edges"`
			} `json:"characters"`
		} `json:"Media"`
	}
	err := c.query(ctx, charactersQuery, map[string]any{
		"id":      id,
		"page":    p.Page,
		"perPage": p.PerPage,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Media == nil {
		return nil, ErrNotFound
	}

	edges := result.Media.Characters.Edges
	characters := make([]Character, 0, len(edges))
	for _, e := range edges {
		actors := make([]VoiceActor, 0, len(e.VoiceActors))
		for _, va := range e.VoiceActors {
			actors = append(actors, VoiceActor{
				ID:       va.ID,
				Name:     va.Name.Full,
				Image:    va.Image.Large,
				Language: va.LanguageV2,
			})
		}
		characters = append(characters, Character{
			ID:          e.Node.ID,
			Name:        e.Node.Name.Full,
			NativeName:  e.Node.Name.Native,
			Image:       e.Node.Image.Large,
			Role:        e.Role,
			VoiceActors: actors,
		})
	}

	return &CharacterPage{
		Results:  characters,
		PageInfo: toPageInfo(result.Media.Characters.PageInfo),
	}, nil
}

// Relations lists sequels, prequels and other media related to an anime
func (c *Client) Relations(ctx context.Context, id int) ([]Relation, error) {
	var result struct {
		Media *struct {
			Relations struct {
				Edges []anilistRelationEdge `json:"edges"`
			} `json:"relations"`
		} `json:"Media"`
	}
	if err := c.query(ctx, relationsQuery, map[string]any{"id": id}, &result); err != nil {
		return nil, err
	}
	if result.Media == nil {
		return nil, ErrNotFound
	}

	relations := make([]Relation, 0, len(result.Media.Relations.Edges))
	for _, e := range result.Media.Relations.Edges {
		relations = append(relations, Relation{
			MediaResult:  toMediaResult(e.Node),
			RelationType: e.RelationType,
			Format:       e.Node.Format,
			Type:         e.Node.Type,
		})
	}
	return relations, nil
}

// Recommendations lists user recommendations for an anime, highest rated first
func (c *Client) Recommendations(ctx context.Context, id int, p Pagination) (*RecommendationPage, error) {
	p = c.Paginate(p)

	var result struct {
		Media *struct {
			Recommendations struct {
				PageInfo anilistPageInfo         `json:"pageInfo"`
				Nodes    []anilistRecommendation `json:"nodes"`
			} `json:"recommendations"`
		} `json:"Media"`
	}
	err := c.query(ctx, recommendationsQuery, map[string]any{
		"id":      id,
		"page":    p.Page,
		"perPage": p.PerPage,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Media == nil {
		return nil, ErrNotFound
	}

	nodes := result.Media.Recommendations.Nodes
	recs := make([]Recommendation, 0, len(nodes))
	for _, n := range nodes {
		// deleted media leave a null recommendation behind
		if n.MediaRecommendation == nil {
			continue
		}
		recs = append(recs, Recommendation{
			MediaResult: toMediaResult(*n.MediaRecommendation),
			Rating:      n.Rating,
		})
	}

	return &RecommendationPage{
		Results:  recs,
		PageInfo: toPageInfo(result.Media.Recommendations.PageInfo),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"errors"`
}

// query executes a GraphQL query against the AniList API
func (c *Client) query(ctx context.Context, query string, variables map[string]any, result any) error {
	resp, err := c.http.Post(ctx, c.cfg.Endpoint, graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("anilist query: %w", err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return &upstream.Error{
			Service:    c.http.Service(),
			StatusCode: http.StatusBadGateway,
			Err:        fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if len(envelope.Errors) > 0 {
		c.logger.Warn("anilist returned errors",
			"message", envelope.Errors[0].Message,
			"status", envelope.Errors[0].Status,
		)
		return &upstream.Error{
			Service:    c.http.Service(),
			StatusCode: http.StatusBadGateway,
			Err:        fmt.Errorf("AniList API error: %s", envelope.Errors[0].Message),
		}
	}

	if len(envelope.Data) == 0 {
		return &upstream.Error{
			Service:    c.http.Service(),
			StatusCode: http.StatusBadGateway,
			Err:        errors.New("response carries no data"),
		}
	}

	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// plainText renders an AniList description as plain text, keeping line breaks
func plainText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	text := strings.ReplaceAll(doc.Text(), "\r\n", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
