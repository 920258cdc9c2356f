package catalog

import (
	"strings"
	"testing"

	"github.com/sakif/manga-match/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestFormatRating(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "5.0"},
		{0, "0.0"},
		{80, "4.0"},
		{1, "0.1"},
		// exact halves round up
		{85, "4.3"},
		{95, "4.8"},
		{5, "0.3"},
		// binary quotient sits just below the half
		{73, "3.6"},
		{81, "4.0"},
		{87, "4.3"},
	}

	for _, tt := range tests {
		if got := formatRating(tt.score); got != tt.want {
			t.Errorf("formatRating(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTransform(t *testing.T) {
	t.Run("full entry", func(t *testing.T) {
		m := media{ID: 30013, Status: "RELEASING", Genres: []string{"Action"}}
		m.Title.English = strPtr("One Piece")
		m.Title.Romaji = strPtr("ONE PIECE")
		m.CoverImage.Large = "cover.jpg"
		m.AverageScore = intPtr(88)
		m.Chapters = intPtr(1100)
		m.Format = strPtr("MANGA")
		m.Description = strPtr("<b>Gol D. Roger</b> was known as the <i>Pirate King</i>.")

		got := transform(m)

		want := model.Comic{
			ID:          30013,
			Title:       "One Piece",
			CoverImage:  "cover.jpg",
			Rating:      "4.4",
			Chapters:    "1100",
			Status:      "RELEASING",
			Format:      "MANGA",
			Genres:      []string{"Action"},
			Description: "Gol D. Roger was known as the Pirate King....",
		}
		if got.ID != want.ID || got.Title != want.Title || got.CoverImage != want.CoverImage ||
			got.Rating != want.Rating || got.Chapters != want.Chapters || got.Status != want.Status ||
			got.Format != want.Format || got.Description != want.Description || len(got.Genres) != 1 {
			t.Errorf("transform() = %+v, want %+v", got, want)
		}
	})

	t.Run("missing optional fields", func(t *testing.T) {
		m := media{ID: 9}
		m.Title.Romaji = strPtr("Romaji Only")

		got := transform(m)

		if got.Title != "Romaji Only" {
			t.Errorf("Title = %q, want romaji fallback", got.Title)
		}
		if got.Rating != "N/A" {
			t.Errorf("Rating = %q, want N/A", got.Rating)
		}
		if got.Chapters != "?" {
			t.Errorf("Chapters = %q, want ?", got.Chapters)
		}
		if got.Format != "MANGA" {
			t.Errorf("Format = %q, want MANGA", got.Format)
		}
		if got.Genres == nil {
			t.Error("Genres is nil, want empty slice")
		}
		if got.Description != "No description available" {
			t.Errorf("Description = %q", got.Description)
		}
	})

	t.Run("empty english title falls back", func(t *testing.T) {
		m := media{ID: 10}
		m.Title.English = strPtr("")
		m.Title.Romaji = strPtr("Shingeki no Kyojin")

		if got := transform(m).Title; got != "Shingeki no Kyojin" {
			t.Errorf("Title = %q, want romaji", got)
		}
	})

	t.Run("long description is cut", func(t *testing.T) {
		m := media{ID: 11}
		m.Description = strPtr(strings.Repeat("a", 400))

		got := transform(m).Description
		if len(got) != descriptionLimit+3 || !strings.HasSuffix(got, "...") {
			t.Errorf("Description length = %d, want %d ending in ...", len(got), descriptionLimit+3)
		}
	})
}

func TestIsSafe(t *testing.T) {
	tests := []struct {
		name  string
		comic model.Comic
		want  bool
	}{
		{"clean", model.Comic{Title: "Vagabond", Genres: []string{"Action", "Drama"}, Description: "A swordsman."}, true},
		{"excluded genre", model.Comic{Title: "X", Genres: []string{"Ecchi"}}, false},
		{"excluded genre any case", model.Comic{Title: "X", Genres: []string{"HAREM"}}, false},
		{"adult genre substring", model.Comic{Title: "X", Genres: []string{"Adult Cast"}}, false},
		{"keyword in title", model.Comic{Title: "Lewd Tales", Genres: []string{"Comedy"}}, false},
		{"keyword in description", model.Comic{Title: "Clean", Description: "An UNCENSORED edition."}, false},
		{"keyword inside word", model.Comic{Title: "My Hero Academia"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSafe(tt.comic); got != tt.want {
				t.Errorf("isSafe(%+v) = %v, want %v", tt.comic, got, tt.want)
			}
		})
	}
}

func TestSafeComics_DropsUpstreamAdultFlag(t *testing.T) {
	clean := media{ID: 1, Genres: []string{"Action"}}
	clean.Title.English = strPtr("Clean")
	flagged := media{ID: 2, IsAdult: true}
	flagged.Title.English = strPtr("Also Clean Title")

	got := safeComics([]media{clean, flagged})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("safeComics() = %+v, want only id 1", got)
	}
}
