package anilist

// anilistMedia represents a media item from AniList
type anilistMedia struct {
	ID                int                   `json:"id"`
	Title             anilistTitle          `json:"title"`
	Episodes          *int                  `json:"episodes"`
	Description       string                `json:"description"`
	CoverImage        anilistImage          `json:"coverImage"`
	BannerImage       string                `json:"bannerImage"`
	Type              string                `json:"type"`
	Format            string                `json:"format"`
	Status            string                `json:"status"`
	Duration          *int                  `json:"duration"`
	Genres            []string              `json:"genres"`
	AverageScore      *int                  `json:"averageScore"`
	Popularity        int                   `json:"popularity"`
	Season            string                `json:"season"`
	SeasonYear        *int                  `json:"seasonYear"`
	StartDate         anilistDate           `json:"startDate"`
	EndDate           anilistDate           `json:"endDate"`
	NextAiringEpisode *anilistAiringEpisode `json:"nextAiringEpisode"`
	Studios           anilistStudios        `json:"studios"`
	Synonyms          []string              `json:"synonyms"`
}

// anilistTitle represents the title of a media item
type anilistTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// preferred returns the English title, falling back to romaji
func (t anilistTitle) preferred() string {
	if t.English != "" {
		return t.English
	}
	return t.Romaji
}

// anilistImage represents an image from AniList
type anilistImage struct {
	Large string `json:"large"`
}

// anilistDate represents a fuzzy date from AniList
type anilistDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// anilistAiringEpisode represents next airing episode information
type anilistAiringEpisode struct {
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring"`
	Episode         int   `json:"episode"`
}

type anilistStudios struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
}

type anilistPageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

type anilistSchedule struct {
	Episode  int          `json:"episode"`
	AiringAt int64        `json:"airingAt"`
	Media    anilistMedia `json:"media"`
}

type anilistName struct {
	Full   string `json:"full"`
	Native string `json:"native"`
}

type anilistPerson struct {
	ID         int          `json:"id"`
	Name       anilistName  `json:"name"`
	Image      anilistImage `json:"image"`
	LanguageV2 string       `json:"languageV2"`
}

type anilistCharacterEdge struct {
	Role        string          `json:"role"`
	Node        anilistPerson   `json:"node"`
	VoiceActors []anilistPerson `json:"voiceActors"`
}

type anilistRelationEdge struct {
	RelationType string       `json:"relationType"`
	Node         anilistMedia `json:"node"`
}

type anilistRecommendation struct {
	Rating              int           `json:"rating"`
	MediaRecommendation *anilistMedia `json:"mediaRecommendation"`
}

// PageInfo is the pagination block returned with list results
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

// Pagination selects one page of a list query
type Pagination struct {
	Page    int
	PerPage int
}

// MediaResult is the shaped form of a media item used by every list endpoint
type MediaResult struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Poster   string `json:"poster"`
	Episodes *int   `json:"episodes"`
	Status   string `json:"status"`
}

// ResultPage is one page of shaped media results
type ResultPage struct {
	Results  []MediaResult `json:"results"`
	PageInfo PageInfo      `json:"pageInfo"`
}

// ScheduleEntry is one upcoming airing
type ScheduleEntry struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Poster      string `json:"poster"`
	NextEpisode int    `json:"next_episode"`
	AiringAt    int64  `json:"airingAt"`
}

// SchedulePage is one page of upcoming airings
type SchedulePage struct {
	Results  []ScheduleEntry `json:"results"`
	PageInfo PageInfo        `json:"pageInfo"`
}

// Title carries every title variant of a media item
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// FuzzyDate is a partially known calendar date
type FuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// AiringEpisode describes the next episode to air
type AiringEpisode struct {
	Episode         int   `json:"episode"`
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring"`
}

// MediaInfo is the detailed view of a single media item
type MediaInfo struct {
	ID                int            `json:"id"`
	Title             Title          `json:"title"`
	Description       string         `json:"description"`
	CoverImage        string         `json:"coverImage"`
	BannerImage       string         `json:"bannerImage,omitempty"`
	Genres            []string       `json:"genres"`
	AverageScore      *int           `json:"averageScore"`
	Popularity        int            `json:"popularity"`
	Episodes          *int           `json:"episodes"`
	Duration          *int           `json:"duration"`
	Status            string         `json:"status"`
	Format            string         `json:"format"`
	Season            string         `json:"season,omitempty"`
	SeasonYear        *int           `json:"seasonYear"`
	StartDate         FuzzyDate      `json:"startDate"`
	EndDate           FuzzyDate      `json:"endDate"`
	Studios           []string       `json:"studios"`
	Synonyms          []string       `json:"synonyms"`
	NextAiringEpisode *AiringEpisode `json:"nextAiringEpisode"`
}

// VoiceActor is a character's voice actor
type VoiceActor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Language string `json:"language"`
}

// Character is a character appearing in a media item
type Character struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	NativeName  string       `json:"nativeName,omitempty"`
	Image       string       `json:"image"`
	Role        string       `json:"role"`
	VoiceActors []VoiceActor `json:"voiceActors"`
}

// CharacterPage is one page of characters
type CharacterPage struct {
	Results  []Character `json:"results"`
	PageInfo PageInfo    `json:"pageInfo"`
}

// Relation is a media item related to another (sequel, prequel, ...)
type Relation struct {
	MediaResult
	RelationType string `json:"relationType"`
	Format       string `json:"format"`
	Type         string `json:"type"`
}

// Recommendation is a user recommended media item
type Recommendation struct {
	MediaResult
	Rating int `json:"rating"`
}

// RecommendationPage is one page of recommendations
type RecommendationPage struct {
	Results  []Recommendation `json:"results"`
	PageInfo PageInfo         `json:"pageInfo"`
}

// Suggestion is a short search hit for autocomplete
type Suggestion struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Native string `json:"native,omitempty"`
	Poster string `json:"poster"`
	Format string `json:"format"`
	Year   *int   `json:"year"`
}

// FilterOptions narrows a media search. Empty fields are not sent.
type FilterOptions struct {
	Genre  string
	Tag    string
	Year   int
	Season string
	Format string
	Status string
	Sort   string
}

// Collection is a preset sort/status combination
type Collection struct {
	Name   string
	Sort   string
	Status string
}

// Preset collections exposed by the HTTP surface
var (
	Trending = Collection{Name: "trending", Sort: "TRENDING_DESC"}
	Popular  = Collection{Name: "popular", Sort: "POPULARITY_DESC"}
	Upcoming = Collection{Name: "upcoming", Sort: "POPULARITY_DESC", Status: "NOT_YET_RELEASED"}
	Recent   = Collection{Name: "recent", Sort: "START_DATE_DESC", Status: "RELEASING"}
)

func toPageInfo(p anilistPageInfo) PageInfo {
	return PageInfo(p)
}

func toMediaResult(m anilistMedia) MediaResult {
	return MediaResult{
		ID:       m.ID,
		Title:    m.Title.preferred(),
		Poster:   m.CoverImage.Large,
		Episodes: m.Episodes,
		Status:   m.Status,
	}
}

func toMediaResults(media []anilistMedia) []MediaResult {
	results := make([]MediaResult, 0, len(media))
	for _, m := range media {
		results = append(results, toMediaResult(m))
	}
	return results
}

func toFuzzyDate(d anilistDate) FuzzyDate {
	return FuzzyDate(d)
}
