package models

import (
	"cmp"
	"strings"
)

// MusicRecord is one saved track as produced by a platform mapper.
//
// Optional fields are nil when the platform does not provide them and serialize as null.
type MusicRecord struct {
	Author    string  `json:"author"`
	Title     string  `json:"title"`
	URL       *string `json:"url"`
	Thumbnail *string `json:"thumbnail"`
	Date      *string `json:"date"`
	Album     *string `json:"album"`
}

// Key identifies a song for deduplication: lowercased, trimmed title and author.
type Key struct {
	Title  string
	Author string
}

func (k Key) String() string {
	return k.Title + "|" + k.Author
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Key returns the normalization key of r.
func (r MusicRecord) Key() Key {
	return Key{Title: normalize(r.Title), Author: normalize(r.Author)}
}

// Normalized returns a copy of r whose title and author are trimmed and lowercased.
func (r MusicRecord) Normalized() MusicRecord {
	r.Title = normalize(r.Title)
	r.Author = normalize(r.Author)
	return r
}

// SameSong reports whether a and b share a normalization key.
func SameSong(a, b MusicRecord) bool {
	return a.Key() == b.Key()
}

// compareOptional orders nil before any present value.
func compareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}

// Compare is the catalog's total order: author, title, url, thumbnail, date, album.
func Compare(a, b MusicRecord) int {
	if c := cmp.Compare(a.Author, b.Author); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	if c := compareOptional(a.URL, b.URL); c != 0 {
		return c
	}
	if c := compareOptional(a.Thumbnail, b.Thumbnail); c != 0 {
		return c
	}
	if c := compareOptional(a.Date, b.Date); c != 0 {
		return c
	}
	return compareOptional(a.Album, b.Album)
}

// Equal reports field-wise equality, comparing optional fields by value.
func (r MusicRecord) Equal(o MusicRecord) bool {
	return Compare(r, o) == 0
}
