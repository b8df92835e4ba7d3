// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches anything outside the slug alphabet.
	nonSlugRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts a post title to its URL slug.
//
// Rules:
//  1. Fold accented letters to their base letter and lowercase
//  2. Replace whitespace runs with a single dash
//  3. Remove everything outside [a-z0-9-]
//  4. Collapse multiple dashes
//  5. Trim leading/trailing dashes
//
// Examples:
//
//	"Hello World"          → "hello-world"
//	"  Café   Society!  "  → "cafe-society"
//	"AI -- The Future"     → "ai-the-future"
//	"snake_case title"     → "snakecase-title"
//
// Slugify does not guarantee uniqueness; callers check for collisions.
func Slugify(title string) string {
	s := strings.ToLower(foldAccents(title))
	s = strings.Join(strings.FieldsFunc(s, isSpace), "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// isSpace matches Unicode white space, including \v, NEL and the line and
// paragraph separators, plus the byte order mark.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// foldAccents decomposes the input and drops combining marks.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
