package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walterwhite-69/Miruro-API/internal/upstream"
)

// fakeAniList answers every POST with body and records the decoded request
type fakeAniList struct {
	t        *testing.T
	status   int
	body     string
	requests []graphQLRequest
}

func (f *fakeAniList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "application/json", r.Header.Get("Content-Type"))

	var req graphQLRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.requests = append(f.requests, req)

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = w.Write([]byte(f.body))
}

func newTestClient(t *testing.T, fake *fakeAniList, cfg Config) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg.Endpoint = server.URL
	httpClient := upstream.NewClient(upstream.ClientConfig{Service: "anilist"})
	return NewClient(cfg, httpClient, nil)
}

const mediaPage = `{"data":{"Page":{
	"pageInfo":{"total":2,"currentPage":1,"lastPage":1,"hasNextPage":false,"perPage":20},
	"media":[
		{"id":21,"title":{"romaji":"One Piece","english":"ONE PIECE"},"coverImage":{"large":"https://img/21.jpg"},"episodes":null,"status":"RELEASING"},
		{"id":20,"title":{"romaji":"Naruto","english":null},"coverImage":{"large":"https://img/20.jpg"},"episodes":220,"status":"FINISHED"}
	]
}}}`

func TestPaginate(t *testing.T) {
	client := NewClient(Config{}, nil, nil)

	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{"defaults", Pagination{}, Pagination{Page: 1, PerPage: 20}},
		{"keeps valid values", Pagination{Page: 3, PerPage: 10}, Pagination{Page: 3, PerPage: 10}},
		{"clamps large pages", Pagination{Page: 1, PerPage: 500}, Pagination{Page: 1, PerPage: 50}},
		{"clamps negative values", Pagination{Page: -2, PerPage: -5}, Pagination{Page: 1, PerPage: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.Paginate(tt.in))
		})
	}

	t.Run("honors configured limits", func(t *testing.T) {
		client := NewClient(Config{DefaultPerPage: 10, MaxPerPage: 25}, nil, nil)
		assert.Equal(t, 10, client.Paginate(Pagination{}).PerPage)
		assert.Equal(t, 25, client.Paginate(Pagination{PerPage: 26}).PerPage)
	})
}

func TestClient_Search(t *testing.T) {
	fake := &fakeAniList{t: t, body: mediaPage}
	client := newTestClient(t, fake, Config{})

	page, err := client.Search(context.Background(), "one piece", Pagination{Page: 2, PerPage: 5})
	require.NoError(t, err)

	require.Len(t, page.Results, 2)
	assert.Equal(t, MediaResult{ID: 21, Title: "ONE PIECE", Poster: "https://img/21.jpg", Status: "RELEASING"}, page.Results[0])
	assert.Equal(t, "Naruto", page.Results[1].Title)
	require.NotNil(t, page.Results[1].Episodes)
	assert.Equal(t, 220, *page.Results[1].Episodes)
	assert.Equal(t, 2, page.PageInfo.Total)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Contains(t, req.Query, "SEARCH_MATCH")
	assert.Equal(t, "one piece", req.Variables["search"])
	assert.EqualValues(t, 2, req.Variables["page"])
	assert.EqualValues(t, 5, req.Variables["perPage"])

	t.Run("shaped results marshal with null episodes", func(t *testing.T) {
		out, err := json.Marshal(page.Results[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":21,"title":"ONE PIECE","poster":"https://img/21.jpg","episodes":null,"status":"RELEASING"}`, string(out))
	})
}

func TestClient_Collection(t *testing.T) {
	tests := []struct {
		coll       Collection
		wantSort   string
		wantStatus any
	}{
		{Trending, "TRENDING_DESC", nil},
		{Popular, "POPULARITY_DESC", nil},
		{Upcoming, "POPULARITY_DESC", "NOT_YET_RELEASED"},
		{Recent, "START_DATE_DESC", "RELEASING"},
	}

	for _, tt := range tests {
		t.Run(tt.coll.Name, func(t *testing.T) {
			fake := &fakeAniList{t: t, body: mediaPage}
			client := newTestClient(t, fake, Config{})

			page, err := client.Collection(context.Background(), tt.coll, Pagination{})
			require.NoError(t, err)
			assert.Len(t, page.Results, 2)

			vars := fake.requests[0].Variables
			assert.Equal(t, []any{tt.wantSort}, vars["sort"])
			assert.Equal(t, tt.wantStatus, vars["status"])
			assert.EqualValues(t, 20, vars["perPage"])
		})
	}
}

func TestClient_Schedule(t *testing.T) {
	fake := &fakeAniList{t: t, body: `{"data":{"Page":{
		"pageInfo":{"total":1,"currentPage":1,"lastPage":1,"hasNextPage":false,"perPage":20},
		"airingSchedules":[{"episode":12,"airingAt":1760000000,"media":{"id":5,"title":{"romaji":"Romaji","english":""},"coverImage":{"large":"p.jpg"}}}]
	}}}`}
	client := newTestClient(t, fake, Config{})

	page, err := client.Schedule(context.Background(), Pagination{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, ScheduleEntry{ID: 5, Title: "Romaji", Poster: "p.jpg", NextEpisode: 12, AiringAt: 1760000000}, page.Results[0])

	out, err := json.Marshal(page.Results[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"title":"Romaji","poster":"p.jpg","next_episode":12,"airingAt":1760000000}`, string(out))
}

const infoBody = `{"data":{"Media":{
	"id":1,"title":{"romaji":"Cowboy Bebop","english":"Cowboy Bebop","native":"カウボーイビバップ"},
	"description":"In the year 2071.<br><br>\nSpike <i>Spiegel</i> &amp; Jet.",
	"coverImage":{"large":"c.jpg"},"genres":["Action","Sci-Fi"],"averageScore":86,"episodes":26,
	"status":"FINISHED","format":"TV","season":"SPRING","seasonYear":1998,
	"startDate":{"year":1998,"month":4,"day":3},"endDate":{"year":1999,"month":4,"day":24},
	"studios":{"nodes":[{"name":"Sunrise"}]},
	"nextAiringEpisode":null
}}}`

func TestClient_Info(t *testing.T) {
	t.Run("strips HTML when configured", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: infoBody}
		client := newTestClient(t, fake, Config{StripHTML: true})

		info, err := client.Info(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, "In the year 2071.\n\nSpike Spiegel & Jet.", info.Description)
		assert.Equal(t, "Cowboy Bebop", info.Title.English)
		assert.Equal(t, "カウボーイビバップ", info.Title.Native)
		assert.Equal(t, []string{"Sunrise"}, info.Studios)
		require.NotNil(t, info.AverageScore)
		assert.Equal(t, 86, *info.AverageScore)
		require.NotNil(t, info.StartDate.Year)
		assert.Equal(t, 1998, *info.StartDate.Year)
		assert.Nil(t, info.NextAiringEpisode)
		assert.EqualValues(t, 1, fake.requests[0].Variables["id"])
	})

	t.Run("keeps HTML by default", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: infoBody}
		client := newTestClient(t, fake, Config{})

		info, err := client.Info(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(info.Description, "In the year 2071.<br>"))
	})

	t.Run("null media is not found", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: `{"data":{"Media":null}}`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Info(context.Background(), 999999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("404 is an upstream error", func(t *testing.T) {
		fake := &fakeAniList{t: t, status: http.StatusNotFound, body: `{"errors":[{"message":"Not Found.","status":404}],"data":{"Media":null}}`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Info(context.Background(), 999999999)

		var upErr *upstream.Error
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
		assert.Equal(t, "anilist", upErr.Service)
	})
}

func TestClient_Filter(t *testing.T) {
	fake := &fakeAniList{t: t, body: mediaPage}
	client := newTestClient(t, fake, Config{})

	_, err := client.Filter(context.Background(), FilterOptions{
		Genre:  "Action",
		Year:   2024,
		Season: "fall",
		Format: "tv",
		Status: "finished",
	}, Pagination{PerPage: 10})
	require.NoError(t, err)

	vars := fake.requests[0].Variables
	assert.Equal(t, "Action", vars["genre"])
	assert.EqualValues(t, 2024, vars["seasonYear"])
	assert.Equal(t, "FALL", vars["season"])
	assert.Equal(t, "TV", vars["format"])
	assert.Equal(t, "FINISHED", vars["status"])
	assert.Equal(t, []any{"POPULARITY_DESC"}, vars["sort"])
	assert.NotContains(t, vars, "tag")

	t.Run("custom sort", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: mediaPage}
		client := newTestClient(t, fake, Config{})

		_, err := client.Filter(context.Background(), FilterOptions{Tag: "Isekai", Sort: "score_desc"}, Pagination{})
		require.NoError(t, err)

		vars := fake.requests[0].Variables
		assert.Equal(t, "Isekai", vars["tag"])
		assert.Equal(t, []any{"SCORE_DESC"}, vars["sort"])
	})
}

func TestClient_Suggestions(t *testing.T) {
	fake := &fakeAniList{t: t, body: `{"data":{"Page":{"media":[
		{"id":1,"title":{"romaji":"Boruto","english":"Boruto: Naruto Next Generations"},"coverImage":{"large":"b.jpg"},"format":"TV","seasonYear":2017},
		{"id":2,"title":{"romaji":"Shippuuden","english":""},"coverImage":{"large":"s.jpg"},"format":"TV","seasonYear":2007},
		{"id":3,"title":{"romaji":"Naruto","english":"Naruto"},"coverImage":{"large":"n.jpg"},"format":"TV","seasonYear":2002}
	]}}}`}
	client := newTestClient(t, fake, Config{})

	suggestions, err := client.Suggestions(context.Background(), "naruto")
	require.NoError(t, err)

	require.Len(t, suggestions, 3)
	assert.Equal(t, 3, suggestions[0].ID)
	assert.Equal(t, 1, suggestions[1].ID)
	// no fuzzy match keeps its AniList position after the matches
	assert.Equal(t, 2, suggestions[2].ID)
	assert.EqualValues(t, SuggestionLimit, fake.requests[0].Variables["perPage"])
}

func TestClient_Characters(t *testing.T) {
	fake := &fakeAniList{t: t, body: `{"data":{"Media":{"characters":{
		"pageInfo":{"total":1,"currentPage":1,"lastPage":1,"hasNextPage":false,"perPage":20},
		"edges":[{"role":"MAIN","node":{"id":1,"name":{"full":"Spike Spiegel","native":"スパイク"},"image":{"large":"sp.jpg"}},
			"voiceActors":[{"id":95,"name":{"full":"Kouichi Yamadera"},"image":{"large":"ky.jpg"},"languageV2":"Japanese"}]}]
	}}}}`}
	client := newTestClient(t, fake, Config{})

	page, err := client.Characters(context.Background(), 1, Pagination{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	c := page.Results[0]
	assert.Equal(t, "Spike Spiegel", c.Name)
	assert.Equal(t, "MAIN", c.Role)
	require.Len(t, c.VoiceActors, 1)
	assert.Equal(t, VoiceActor{ID: 95, Name: "Kouichi Yamadera", Image: "ky.jpg", Language: "Japanese"}, c.VoiceActors[0])
}

func TestClient_Relations(t *testing.T) {
	fake := &fakeAniList{t: t, body: `{"data":{"Media":{"relations":{"edges":[
		{"relationType":"SIDE_STORY","node":{"id":5,"title":{"romaji":"Tengoku no Tobira","english":"Knockin' on Heaven's Door"},"coverImage":{"large":"m.jpg"},"episodes":1,"status":"FINISHED","format":"MOVIE","type":"ANIME"}}
	]}}}}`}
	client := newTestClient(t, fake, Config{})

	relations, err := client.Relations(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, relations, 1)
	assert.Equal(t, "SIDE_STORY", relations[0].RelationType)
	assert.Equal(t, "Knockin' on Heaven's Door", relations[0].Title)
	assert.Equal(t, "MOVIE", relations[0].Format)

	out, err := json.Marshal(relations[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"title":"Knockin' on Heaven's Door","poster":"m.jpg","episodes":1,"status":"FINISHED","relationType":"SIDE_STORY","format":"MOVIE","type":"ANIME"}`, string(out))
}

func TestClient_Recommendations(t *testing.T) {
	fake := &fakeAniList{t: t, body: `{"data":{"Media":{"recommendations":{
		"pageInfo":{"total":2,"currentPage":1,"lastPage":1,"hasNextPage":false,"perPage":20},
		"nodes":[
			{"rating":120,"mediaRecommendation":{"id":30,"title":{"romaji":"Samurai Champloo","english":"Samurai Champloo"},"coverImage":{"large":"sc.jpg"},"episodes":26,"status":"FINISHED"}},
			{"rating":3,"mediaRecommendation":null}
		]
	}}}}`}
	client := newTestClient(t, fake, Config{})

	page, err := client.Recommendations(context.Background(), 1, Pagination{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, 30, page.Results[0].ID)
	assert.Equal(t, 120, page.Results[0].Rating)
}

func TestClient_QueryErrors(t *testing.T) {
	t.Run("GraphQL errors on 200 become 502", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: `{"errors":[{"message":"Validation error","status":400}],"data":null}`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Search(context.Background(), "x", Pagination{})

		var upErr *upstream.Error
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
		assert.Contains(t, upErr.Err.Error(), "Validation error")
	})

	t.Run("non-200 keeps status", func(t *testing.T) {
		fake := &fakeAniList{t: t, status: http.StatusTooManyRequests, body: `{}`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Collection(context.Background(), Trending, Pagination{})

		var upErr *upstream.Error
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
		assert.Len(t, fake.requests, 1)
	})

	t.Run("malformed body", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: `<html>`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Schedule(context.Background(), Pagination{})

		var upErr *upstream.Error
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
	})

	t.Run("missing data", func(t *testing.T) {
		fake := &fakeAniList{t: t, body: `{}`}
		client := newTestClient(t, fake, Config{})

		_, err := client.Search(context.Background(), "x", Pagination{})

		var upErr *upstream.Error
		require.ErrorAs(t, err, &upErr)
	})
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"a<br>b", "a\nb"},
		{"a<br><br><br><br>b", "a\n\nb"},
		{"<b>bold</b> &amp; <i>italic</i>", "bold & italic"},
		{"(Source: Wiki)<br>\n", "(Source: Wiki)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plainText(tt.in), tt.in)
	}
}
