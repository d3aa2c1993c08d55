package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/walterwhite-69/Miruro-API/internal/anilist"
	"github.com/walterwhite-69/Miruro-API/internal/pipe"
)

// endpoint documents one route in the index
type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var endpoints = []endpoint{
	{"GET", "/search?query=&page=&perPage=", "Search anime by title"},
	{"GET", "/suggestions?query=", "Autocomplete titles"},
	{"GET", "/filter?genre=&tag=&year=&season=&format=&status=&sort=&page=&perPage=", "Filter anime"},
	{"GET", "/trending", "Trending anime"},
	{"GET", "/popular", "Most popular anime"},
	{"GET", "/upcoming", "Popular anime not yet released"},
	{"GET", "/recent", "Currently airing anime"},
	{"GET", "/schedule", "Upcoming episode airings"},
	{"GET", "/info/:id", "Detailed anime info"},
	{"GET", "/anime/:id/characters", "Characters and voice actors"},
	{"GET", "/anime/:id/relations", "Related anime"},
	{"GET", "/anime/:id/recommendations", "Recommended anime"},
	{"GET", "/episodes/:anilistId", "Episode lists per provider with plain episode ids"},
	{"GET", "/sources?episodeId=&provider=&anilistId=&category=", "Stream sources for one episode"},
	{"GET", "/health", "Health check"},
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      "Miruro API",
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleEpisodes(c *gin.Context) {
	anilistID, ok := pathID(c, "anilistId")
	if !ok {
		return
	}

	payload, err := s.pipe.FetchEpisodes(c.Request.Context(), anilistID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleSources(c *gin.Context) {
	episodeID, ok := requiredQuery(c, "episodeId")
	if !ok {
		return
	}
	provider, ok := requiredQuery(c, "provider")
	if !ok {
		return
	}
	anilistIDStr, ok := requiredQuery(c, "anilistId")
	if !ok {
		return
	}
	anilistID, err := strconv.Atoi(strings.TrimSpace(anilistIDStr))
	if err != nil || anilistID <= 0 {
		badRequest(c, "anilistId must be a positive integer")
		return
	}

	payload, err := s.pipe.FetchSources(c.Request.Context(), pipe.SourcesRequest{
		EpisodeID: episodeID,
		Provider:  provider,
		AnilistID: anilistID,
		Category:  c.DefaultQuery("category", pipe.DefaultCategory),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleSearch(c *gin.Context) {
	query, ok := requiredQuery(c, "query")
	if !ok {
		return
	}
	p, ok := pagination(c)
	if !ok {
		return
	}

	page, err := s.meta.Search(c.Request.Context(), query, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleSuggestions(c *gin.Context) {
	query, ok := requiredQuery(c, "query")
	if !ok {
		return
	}

	suggestions, err := s.meta.Suggestions(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": suggestions})
}

func (s *Server) handleFilter(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	year, ok := optionalInt(c, "year")
	if !ok {
		return
	}

	page, err := s.meta.Filter(c.Request.Context(), anilist.FilterOptions{
		Genre:  c.Query("genre"),
		Tag:    c.Query("tag"),
		Year:   year,
		Season: c.Query("season"),
		Format: c.Query("format"),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
	}, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleCollection(coll anilist.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pagination(c)
		if !ok {
			return
		}

		page, err := s.meta.Collection(c.Request.Context(), coll, p)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func (s *Server) handleSchedule(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}

	page, err := s.meta.Schedule(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleInfo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	info, err := s.meta.Info(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleCharacters(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := pagination(c)
	if !ok {
		return
	}

	page, err := s.meta.Characters(c.Request.Context(), id, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleRelations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	relations, err := s.meta.Relations(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": relations})
}

func (s *Server) handleRecommendations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := pagination(c)
	if !ok {
		return
	}

	page, err := s.meta.Recommendations(c.Request.Context(), id, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// requiredQuery returns the parameter as sent; blank values are rejected
func requiredQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if strings.TrimSpace(v) == "" {
		badRequest(c, "query parameter '"+name+"' is required")
		return "", false
	}
	return v, true
}

// optionalInt parses an integer query parameter, returning 0 when absent
func optionalInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// pagination reads page and perPage. Range clamping is left to the metadata client.
func pagination(c *gin.Context) (anilist.Pagination, bool) {
	page, ok := optionalInt(c, "page")
	if !ok {
		return anilist.Pagination{}, false
	}
	perPage, ok := optionalInt(c, "perPage")
	if !ok {
		return anilist.Pagination{}, false
	}
	return anilist.Pagination{Page: page, PerPage: perPage}, true
}
