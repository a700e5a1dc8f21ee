// Package extract finds URLs in an arbitrary API response.
//
// It is a best-effort heuristic, not a schema validator: any string with an
// http://, https:// or // prefix counts as a URL, and URLs using other
// schemes are missed.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

// NoURLsLabel labels the placeholder row shown when nothing was found.
const NoURLsLabel = "Server Response (no URLs found)"

// Entry is one discovered URL.
type Entry struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

var urlPattern = regexp.MustCompile(`(?i)^(https?://|//)`)

// wellKnown is checked in order at the top level of an object.
var wellKnown = []struct {
	key   string
	label string
}{
	{"cdn_url", "CDN URL"},
	{"raw_url", "Raw URL"},
	{"download_url", "Download URL"},
	{"url", "URL"},
	{"file_url", "File URL"},
	{"file", "File"},
	{"content", "Content"},
}

// IsURL reports whether s looks like a URL.
func IsURL(s string) bool {
	return urlPattern.MatchString(s)
}

// URLs returns every URL found in v, deduplicated by exact string with the
// first-seen label kept. The result is empty, never nil, when nothing matched.
func URLs(v Value) []Entry {
	var found []Entry

	for _, c := range wellKnown {
		if f, ok := v.Get(c.key); ok && f.Kind == String && IsURL(f.Str) {
			found = append(found, Entry{URL: f.Str, Label: c.label})
		}
	}

	if v.Kind == Array {
		found = append(found, scanList(v.Items)...)
	}
	if files, ok := v.Get("files"); ok && files.Kind == Array {
		found = append(found, scanList(files.Items)...)
	}

	walk(v, "", &found)

	out := dedupe(found)

	if len(out) == 0 && (v.Kind == String || v.Kind == Number) {
		text := v.Str
		if v.Kind == Number {
			text = v.Num.String()
		}
		if IsURL(text) {
			out = append(out, Entry{URL: text, Label: "Response"})
		}
	}
	return out
}

// WithPlaceholder returns entries, or a single placeholder row with an
// empty URL when entries is empty.
func WithPlaceholder(entries []Entry) []Entry {
	if len(entries) > 0 {
		return entries
	}
	return []Entry{{URL: "", Label: NoURLsLabel}}
}

// scanList accepts bare URL strings and objects exposing a URL cdn_url.
func scanList(items []Value) []Entry {
	var found []Entry
	for i, item := range items {
		n := strconv.Itoa(i + 1)
		switch item.Kind {
		case String:
			if IsURL(item.Str) {
				found = append(found, Entry{URL: item.Str, Label: "File " + n})
			}
		case Object:
			if c, ok := item.Get("cdn_url"); ok && c.Kind == String && IsURL(c.Str) {
				found = append(found, Entry{URL: c.Str, Label: "CDN " + n})
			}
		}
	}
	return found
}

// walk visits every string leaf and labels hits with their path from the root.
func walk(v Value, path string, found *[]Entry) {
	switch v.Kind {
	case String:
		if IsURL(v.Str) {
			label := path
			if label == "" {
				label = "URL"
			}
			*found = append(*found, Entry{URL: v.Str, Label: label})
		}
	case Array:
		for i, item := range v.Items {
			walk(item, fmt.Sprintf("%s[%d]", path, i), found)
		}
	case Object:
		for _, m := range v.Members {
			child := m.Key
			if path != "" {
				child = path + "." + m.Key
			}
			walk(m.Value, child, found)
		}
	}
}

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.URL]; ok {
			continue
		}
		seen[e.URL] = struct{}{}
		out = append(out, e)
	}
	return out
}
