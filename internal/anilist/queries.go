package anilist

const pageInfoFields = `pageInfo { total currentPage lastPage hasNextPage perPage }`

const mediaFields = `id title { romaji english } coverImage { large } episodes status`

const searchQuery = `
query ($search: String, $page: Int, $perPage: Int) {
	Page(page: $page, perPage: $perPage) {
		` + pageInfoFields + `
		media(search: $search, type: ANIME, sort: SEARCH_MATCH) {
			` + mediaFields + `
		}
	}
}`

const collectionQuery = `
query ($page: Int, $perPage: Int, $sort: [MediaSort], $status: MediaStatus) {
	Page(page: $page, perPage: $perPage) {
		` + pageInfoFields + `
		media(type: ANIME, sort: $sort, status: $status) {
			` + mediaFields + `
		}
	}
}`

const scheduleQuery = `
query ($page: Int, $perPage: Int) {
	Page(page: $page, perPage: $perPage) {
		` + pageInfoFields + `
		airingSchedules(notYetAired: true, sort: TIME) {
			episode
			airingAt
			media { id title { romaji english } coverImage { large } }
		}
	}
}`

const infoQuery = `
query ($id: Int) {
	Media(id: $id, type: ANIME) {
		id
		title { romaji english native }
		description
		coverImage { large }
		bannerImage
		genres
		averageScore
		popularity
		episodes
		duration
		status
		format
		season
		seasonYear
		startDate { year month day }
		endDate { year month day }
		studios(isMain: true) { nodes { name } }
		synonyms
		nextAiringEpisode { episode airingAt timeUntilAiring }
	}
}`

const filterQuery = `
query ($page: Int, $perPage: Int, $genre: String, $tag: String, $seasonYear: Int, $season: MediaSeason, $format: MediaFormat, $status: MediaStatus, $sort: [MediaSort]) {
	Page(page: $page, perPage: $perPage) {
		` + pageInfoFields + `
		media(type: ANIME, genre: $genre, tag: $tag, seasonYear: $seasonYear, season: $season, format: $format, status: $status, sort: $sort) {
			` + mediaFields + `
		}
	}
}`

const suggestionsQuery = `
query ($search: String, $perPage: Int) {
	Page(page: 1, perPage: $perPage) {
		media(search: $search, type: ANIME, sort: SEARCH_MATCH) {
			id
			title { romaji english native }
			coverImage { large }
			format
			seasonYear
			synonyms
		}
	}
}`

const charactersQuery = `
query ($id: Int, $page: Int, $perPage: Int) {
	Media(id: $id, type: ANIME) {
		characters(sort: [ROLE, RELEVANCE], page: $page, perPage: $perPage) {
			` + pageInfoFields + `
			edges {
				role
				node { id name { full native } image { large } }
				voiceActors(language: JAPANESE) { id name { full native } image { large } languageV2 }
			}
		}
	}
}`

const relationsQuery = `
query ($id: Int) {
	Media(id: $id, type: ANIME) {
		relations {
			edges {
				relationType
				node { ` + mediaFields + ` format type }
			}
		}
	}
}`

const recommendationsQuery = `
query ($id: Int, $page: Int, $perPage: Int) {
	Media(id: $id, type: ANIME) {
		recommendations(sort: RATING_DESC, page: $page, perPage: $perPage) {
			` + pageInfoFields + `
			nodes {
				rating
				mediaRecommendation { ` + mediaFields + ` }
			}
		}
	}
}`
