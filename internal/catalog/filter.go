package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sakif/manga-match/internal/model"
)

const descriptionLimit = 150

var (
	excludedGenres = []string{"hentai", "ecchi", "erotica", "adult", "harem"}
	adultKeywords  = []string{"hentai", "ecchi", "ero", "porn", "xxx", "adult", "uncensored", "lewd"}

	htmlTag = regexp.MustCompile(`<[^>]*>`)
)

// transform turns an AniList media entry into the comic shape the client
// renders.
func transform(m media) model.Comic {
	c := model.Comic{
		ID:          m.ID,
		Title:       firstNonEmpty(m.Title.English, m.Title.Romaji),
		CoverImage:  m.CoverImage.Large,
		Rating:      "N/A",
		Chapters:    "?",
		Status:      m.Status,
		Format:      "MANGA",
		Genres:      m.Genres,
		Description: "No description available",
	}

	if m.AverageScore != nil && *m.AverageScore > 0 {
		c.Rating = formatRating(*m.AverageScore)
	}
	if m.Chapters != nil && *m.Chapters > 0 {
		c.Chapters = strconv.Itoa(*m.Chapters)
	}
	if m.Format != nil && *m.Format != "" {
		c.Format = *m.Format
	}
	if c.Genres == nil {
		c.Genres = []string{}
	}
	if m.Description != nil && *m.Description != "" {
		c.Description = truncate(htmlTag.ReplaceAllString(*m.Description, ""), descriptionLimit) + "..."
	}

	return c
}

// formatRating maps a 0-100 score onto a 0-5 scale with one decimal. The
// quotient is rounded as a float64, so 73 -> "3.6" (3.6499...). Only scores
// ending in 5 land exactly on a half, and those round up (85 -> "4.3").
func formatRating(score int) string {
	if score%10 == 5 {
		tenths := (score + 1) / 2
		return strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10)
	}
	return strconv.FormatFloat(float64(score)/20, 'f', 1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

// isSafe reports whether a comic passes the local content filter: no excluded
// genre and no adult keyword in title or description. Matching is
// case-insensitive substring matching.
func isSafe(c model.Comic) bool {
	for _, g := range c.Genres {
		if containsAny(strings.ToLower(g), excludedGenres) {
			return false
		}
	}
	if containsAny(strings.ToLower(c.Title), adultKeywords) {
		return false
	}
	return !containsAny(strings.ToLower(c.Description), adultKeywords)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// safeComics drops entries flagged adult upstream, transforms the rest and
// applies the local filter.
func safeComics(entries []media) []model.Comic {
	out := make([]model.Comic, 0, len(entries))
	for _, m := range entries {
		if m.IsAdult {
			continue
		}
		c := transform(m)
		if isSafe(c) {
			out = append(out, c)
		}
	}
	return out
}
