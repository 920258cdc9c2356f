package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultURL is the public AniList GraphQL endpoint.
const DefaultURL = "https://graphql.anilist.co"

// Both queries ask AniList to leave out adult titles; the local filter in
// filter.go runs again on whatever comes back.
const discoverQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(
      type: MANGA,
      sort: POPULARITY_DESC,
      isAdult: false,
      genre_not_in: ["Hentai", "Ecchi", "Erotica", "Harem"]
    ) {
      id
      title { romaji english }
      coverImage { large }
      description
      averageScore
      chapters
      status
      format
      genres
      isAdult
    }
  }
}`

const batchQuery = `
query ($ids: [Int]) {
  Page {
    media(
      id_in: $ids,
      type: MANGA,
      isAdult: false,
      genre_not_in: ["Hentai", "Ecchi", "Erotica"]
    ) {
      id
      title { romaji english }
      coverImage { large }
      description
      averageScore
      chapters
      status
      format
      genres
      isAdult
    }
  }
}`

// media is one entry of AniList's Page.media array. Nullable scalars are
// pointers so "absent" and zero stay distinguishable.
type media struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  *string `json:"romaji"`
		English *string `json:"english"`
	} `json:"title"`
	CoverImage struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	Description  *string  `json:"description"`
	AverageScore *int     `json:"averageScore"`
	Chapters     *int     `json:"chapters"`
	Status       string   `json:"status"`
	Format       *string  `json:"format"`
	Genres       []string `json:"genres"`
	IsAdult      bool     `json:"isAdult"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Page struct {
			Media []media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query posts one GraphQL request and returns the Page.media array.
func (c *Client) query(ctx context.Context, query string, vars map[string]any) ([]media, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("catalog: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: calling AniList: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog: AniList returned status %d", resp.StatusCode)
	}

	var out graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("catalog: decoding AniList response: %w", err)
	}

	if len(out.Errors) > 0 && len(out.Data.Page.Media) == 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("catalog: AniList errors: %s", strings.Join(msgs, "; "))
	}

	return out.Data.Page.Media, nil
}
