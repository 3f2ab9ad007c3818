package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	prepositionPattern = regexp.MustCompile(`(?i)(?:di|in)\s+([A-Za-z][\w\s]*?)(?:\s|$|,|\.)`)
	leadingCityPattern = regexp.MustCompile(`(?i)^([A-Za-z][\w\s]*?)\s+(?:weather|cuaca|suhu|cuacanya)`)
	capitalizedRun     = regexp.MustCompile(`[A-Z][a-z]+(?:\s[A-Z][a-z]+)*`)
	wordSplitter       = regexp.MustCompile(`\s+`)
	punctuation        = strings.NewReplacer(".", "", ",", "", "!", "", "?", "")
)

// Candidates containing any of these (as substrings) are skipped by the
// capitalized-run heuristic.
var capitalStoplist = []string{
	"apa",
	"apakah",
	"bagaimana",
	"cuaca",
	"suhu",
	"hujan",
	"angin",
	"awan",
	"berawan",
	"indonesia",
	"jakarta",
	"bandung",
	"surabaya",
}

var trailingStopwords = map[string]struct{}{
	"cuaca": {}, "weather": {}, "suhu": {}, "apa": {}, "apakah": {}, "bagaimana": {},
	"di": {}, "in": {}, "the": {}, "and": {}, "or": {}, "for": {}, "to": {}, "of": {}, "is": {},
}

// ExtractCityName pulls a city name out of free text. The heuristics run in
// order and the first hit wins:
//
//  1. the phrase after "di" or "in"
//  2. the phrase before a leading weather keyword ("Tokyo weather")
//  3. the first capitalized run not containing a stoplist word
//  4. the last capitalized word longer than two characters
//
// ok is false when nothing looks like a city.
func ExtractCityName(message string) (city string, ok bool) {
	if m := prepositionPattern.FindStringSubmatch(message); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			return c, true
		}
	}

	if m := leadingCityPattern.FindStringSubmatch(message); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			return c, true
		}
	}

	for _, candidate := range capitalizedRun.FindAllString(message, -1) {
		if !containsStopword(strings.ToLower(candidate)) {
			return strings.TrimSpace(candidate), true
		}
	}

	words := wordSplitter.Split(message, -1)
	for i := len(words) - 1; i >= 0; i-- {
		word := punctuation.Replace(words[i])
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) {
			continue
		}
		if _, stop := trailingStopwords[strings.ToLower(word)]; stop {
			continue
		}
		return word, true
	}

	return "", false
}

func containsStopword(candidate string) bool {
	for _, stop := range capitalStoplist {
		if strings.Contains(candidate, stop) {
			return true
		}
	}
	return false
}
