package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeComicID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "42", want: "42"},
		{name: "leading zeros", raw: "0042", want: "42"},
		{name: "surrounding space", raw: "  105398 ", want: "105398"},
		{name: "empty", raw: "", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
		{name: "decimal", raw: "4.2", wantErr: true},
		{name: "letters", raw: "one-piece", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeComicID(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidComicID) {
					t.Fatalf("NormalizeComicID(%q) error = %v, want ErrInvalidComicID", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeComicID(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeComicID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestComicIDUnmarshal_NumberAndStringAgree(t *testing.T) {
	var fromNumber, fromString struct {
		ComicID ComicID `json:"comicId"`
	}

	if err := json.Unmarshal([]byte(`{"comicId": 42}`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"comicId": "42"}`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}

	a, _ := NormalizeComicID(string(fromNumber.ComicID))
	b, _ := NormalizeComicID(string(fromString.ComicID))
	if a != b || a != "42" {
		t.Errorf("number -> %q, string -> %q, want both %q", a, b, "42")
	}
}

func TestComicIDUnmarshal_MissingAndNull(t *testing.T) {
	var body struct {
		ComicID ComicID `json:"comicId"`
	}

	if err := json.Unmarshal([]byte(`{"comicId": null}`), &body); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if body.ComicID != "" {
		t.Errorf("null comicId = %q, want empty", body.ComicID)
	}

	if err := json.Unmarshal([]byte(`{"comicId": true}`), &body); err == nil {
		t.Error("expected an error for a boolean comicId")
	}
}
