// Package extract holds the shared field-extraction helpers used by every
// store scraper: price/rating/review parsing, whitespace cleanup and
// ordered selector fallbacks over goquery selections.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	rePrice      = regexp.MustCompile(`[\d,]+\.?\d*`)
	reDecimal    = regexp.MustCompile(`(\d+\.?\d*)`)
	reInteger    = regexp.MustCompile(`(\d+)`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Price pulls a numeric price out of raw price text. Thousands separators
// are stripped before parsing, so "$1,234.56" yields 1234.56. The second
// return is false when no parseable number is present.
func Price(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	match := rePrice.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(text string) string {
	return reWhitespace.ReplaceAllString(strings.TrimSpace(text), " ")
}

// Rating parses the first decimal number in the text, clamped into [0, 5].
func Rating(text string) (float64, bool) {
	match := reDecimal.FindString(text)
	if match == "" {
		return 0, false
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return rating, true
}

// ReviewCount parses the first integer sequence in the text.
// Thousands separators are stripped first, so "1,024 reviews" yields 1024.
func ReviewCount(text string) (int, bool) {
	match := reInteger.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0, false
	}
	count, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return count, true
}

// FirstText walks the selector alternatives in order and returns the
// cleaned text of the first one that yields non-empty content.
func FirstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := CleanText(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr walks the selector alternatives in order and, for each match,
// the attribute alternatives, returning the first non-empty value.
func FirstAttr(s *goquery.Selection, selectors []string, attrs ...string) string {
	for _, sel := range selectors {
		elem := s.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}
		for _, attr := range attrs {
			if val, ok := elem.Attr(attr); ok && val != "" {
				return val
			}
		}
	}
	return ""
}

// AbsoluteURL resolves href against base when it is relative.
// A malformed href or base returns the href unchanged.
func AbsoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
