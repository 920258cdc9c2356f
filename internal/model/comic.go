package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Comic is a catalog entry as served to the client. Only ID matters to likes
// and lists; the remaining fields are display data copied from AniList.
type Comic struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	CoverImage  string   `json:"coverImage"`
	Rating      string   `json:"rating"`
	Chapters    string   `json:"chapters"`
	Status      string   `json:"status"`
	Format      string   `json:"format"`
	Genres      []string `json:"genres"`
	Description string   `json:"description"`
}

// ErrInvalidComicID is returned for ids that are not positive integers.
var ErrInvalidComicID = errors.New("comic ID must be a positive integer")

// ComicID is a catalog item id as it arrives in a request body. Clients send
// either a JSON number (42) or a string ("42"); both decode to the same raw
// text, which NormalizeComicID turns into the canonical form.
type ComicID string

// UnmarshalJSON accepts a JSON number or a JSON string.
func (c *ComicID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ComicID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = ComicID(n.String())
	return nil
}

// NormalizeComicID converts raw input into the single textual representation
// used for storage and comparison: base-10, no sign, no leading zeros.
// "042", " 42 " and 42 all normalize to "42".
func NormalizeComicID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidComicID
	}
	n, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || n == 0 {
		return "", ErrInvalidComicID
	}
	return strconv.FormatUint(n, 10), nil
}
