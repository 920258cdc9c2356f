package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/manga-match/internal/model"
)

// capturedRequest is what the fake AniList saw.
type capturedRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Page    int   `json:"page"`
		PerPage int   `json:"perPage"`
		IDs     []int `json:"ids"`
	} `json:"variables"`
}

// fakeAniList serves the given media list and records every request.
type fakeAniList struct {
	mu       sync.Mutex
	requests []capturedRequest
	media    []map[string]any
	status   int
}

func (f *fakeAniList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req capturedRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"Page": map[string]any{"media": f.media}},
	})
}

func newFake(t *testing.T, f *fakeAniList) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithHTTPClient(srv.Client()))
}

// countingTransport counts round trips before handing them to next.
type countingTransport struct {
	mu    sync.Mutex
	calls int
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.next.RoundTrip(r)
}

func entry(id int, title string, genres ...string) map[string]any {
	if genres == nil {
		genres = []string{"Action"}
	}
	return map[string]any{
		"id":           id,
		"title":        map[string]any{"english": title, "romaji": title},
		"coverImage":   map[string]any{"large": "cover.jpg"},
		"description":  "A story.",
		"averageScore": 80,
		"chapters":     10,
		"status":       "FINISHED",
		"format":       "MANGA",
		"genres":       genres,
		"isAdult":      false,
	}
}

func ids(comics []model.Comic) []int {
	out := make([]int, len(comics))
	for i, c := range comics {
		out[i] = c.ID
	}
	return out
}

// =========================================================================
// DISCOVER
// =========================================================================

func TestDiscover_FiltersAndSendsPopularityQuery(t *testing.T) {
	adult := entry(2, "Flagged")
	adult["isAdult"] = true

	fake := &fakeAniList{media: []map[string]any{
		entry(1, "Vinland Saga"),
		adult,
		entry(3, "Genre Trouble", "Ecchi"),
		entry(4, "XXX Holic"),
		entry(5, "Berserk"),
	}}
	c := newFake(t, fake)

	comics := c.Discover(context.Background())

	got := ids(comics)
	sort.Ints(got)
	assert.Equal(t, []int{1, 5}, got)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Contains(t, req.Query, "POPULARITY_DESC")
	assert.Contains(t, req.Query, "isAdult: false")
	assert.GreaterOrEqual(t, req.Variables.Page, 1)
	assert.LessOrEqual(t, req.Variables.Page, 50)
	assert.Equal(t, 50, req.Variables.PerPage)
}

func TestDiscover_FallsBackToMockOnServerError(t *testing.T) {
	c := newFake(t, &fakeAniList{status: http.StatusInternalServerError})

	comics := c.Discover(context.Background())

	got := ids(comics)
	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestDiscover_FallsBackToMockWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	comics := New(url).Discover(context.Background())
	assert.Len(t, comics, 5)
}

func TestDiscover_UsesProvidedHTTPClient(t *testing.T) {
	fake := &fakeAniList{media: []map[string]any{entry(7, "Seven")}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	transport := &countingTransport{next: srv.Client().Transport}
	c := New(srv.URL, WithHTTPClient(&http.Client{Transport: transport}))

	comics := c.Discover(context.Background())

	assert.Equal(t, []int{7}, ids(comics))
	assert.Equal(t, 1, transport.calls)
}

// =========================================================================
// BATCH
// =========================================================================

func TestBatch_PreservesRequestOrder(t *testing.T) {
	fake := &fakeAniList{media: []map[string]any{
		entry(30, "Thirty"),
		entry(10, "Ten"),
		entry(20, "Twenty"),
	}}
	c := newFake(t, fake)

	comics := c.Batch(context.Background(), []int{20, 10, 99, 30})

	assert.Equal(t, []int{20, 10, 30}, ids(comics))
	require.Len(t, fake.requests, 1)
	assert.Contains(t, fake.requests[0].Query, "id_in")
	assert.Equal(t, []int{20, 10, 99, 30}, fake.requests[0].Variables.IDs)
}

func TestBatch_Empty(t *testing.T) {
	fake := &fakeAniList{}
	c := newFake(t, fake)

	comics := c.Batch(context.Background(), nil)

	assert.NotNil(t, comics)
	assert.Empty(t, comics)
	assert.Empty(t, fake.requests, "no upstream call for an empty batch")
}

func TestBatch_FallbackOnlyReturnsRequestedMocks(t *testing.T) {
	c := newFake(t, &fakeAniList{status: http.StatusBadGateway})

	comics := c.Batch(context.Background(), []int{5, 99, 2})

	assert.Equal(t, []int{5, 2}, ids(comics))
}

type memoryCache struct {
	mu     sync.Mutex
	comics map[int]model.Comic
}

func (m *memoryCache) GetComic(_ context.Context, id int) (*model.Comic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comics[id]
	if !ok {
		return nil, errors.New("miss")
	}
	return &c, nil
}

func (m *memoryCache) SetComic(_ context.Context, c *model.Comic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comics[c.ID] = *c
	return nil
}

func TestBatch_UsesCache(t *testing.T) {
	cache := &memoryCache{comics: map[int]model.Comic{
		7: {ID: 7, Title: "From Cache"},
	}}
	fake := &fakeAniList{media: []map[string]any{entry(8, "From Upstream")}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithCache(cache))

	comics := c.Batch(context.Background(), []int{7, 8})

	require.Len(t, comics, 2)
	assert.Equal(t, "From Cache", comics[0].Title)
	assert.Equal(t, "From Upstream", comics[1].Title)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, []int{8}, fake.requests[0].Variables.IDs, "cached ids are not requested again")

	_, err := cache.GetComic(context.Background(), 8)
	assert.NoError(t, err, "fetched comic is written back to the cache")
}

func TestBatch_AllCachedSkipsUpstream(t *testing.T) {
	cache := &memoryCache{comics: map[int]model.Comic{1: {ID: 1}, 2: {ID: 2}}}
	fake := &fakeAniList{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	comics := New(srv.URL, WithCache(cache)).Batch(context.Background(), []int{2, 1})

	assert.Equal(t, []int{2, 1}, ids(comics))
	assert.Empty(t, fake.requests)
}

// =========================================================================
// PARSE IDS
// =========================================================================

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int
		wantErr bool
	}{
		{"single", "42", []int{42}, false},
		{"several", "1,2,3", []int{1, 2, 3}, false},
		{"duplicates dropped", "3,1,3,1", []int{3, 1}, false},
		{"canonicalized duplicates", "042,42", []int{42}, false},
		{"spaces and blanks", " 1 , ,2,", []int{1, 2}, false},
		{"empty", "", []int{}, false},
		{"non numeric", "1,abc", nil, true},
		{"negative", "-4", nil, true},
		{"zero", "0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrInvalidComicID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_DefaultEndpoint(t *testing.T) {
	c := New("")
	assert.True(t, strings.HasPrefix(c.endpoint, "https://graphql.anilist.co"))
}
