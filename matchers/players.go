package matchers

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinNameOccurrences is how many times a candidate must appear across all
// titles before it is treated as a player name.
const MinNameOccurrences = 2

// AllPlayers is the selector value meaning no player filter.
const AllPlayers = "All Players"

// A name word is an uppercase letter followed by lowercase letters, optionally
// repeated for camel-cased names such as LeBron, DeMar or McCollum.
var candidatePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:[A-Z][a-z]+)* [A-Z][a-z]+(?:[A-Z][a-z]+)*)\b`)

// CandidateNames returns every two-word capitalized candidate in the title,
// left to right, non-overlapping. RE2's \b is ASCII-only, so a match touching
// a non-ASCII letter ("Nikola Joki" in "Nikola Jokić") is rejected and the
// search resumes one rune later.
func CandidateNames(title string) []string {
	var names []string
	for pos := 0; pos < len(title); {
		loc := candidatePattern.FindStringIndex(title[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if !wordRuneBefore(title, start) && !wordRuneAfter(title, end) {
			names = append(names, title[start:end])
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(title[start:])
		pos = start + size
	}
	return names
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

// ExtractPlayerNames returns the distinct candidates that occur at least
// MinNameOccurrences times across titles, sorted for display.
func ExtractPlayerNames(titles []string) []string {
	counts := make(map[string]int)
	for _, t := range titles {
		for _, name := range CandidateNames(t) {
			counts[name]++
		}
	}

	names := make([]string, 0, len(counts))
	for name, n := range counts {
		if n >= MinNameOccurrences {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MatchesPlayer reports whether title contains player, ignoring case.
func MatchesPlayer(title, player string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(player))
}

// IsPlayerSelected reports whether the selector names an actual player.
func IsPlayerSelected(player string) bool {
	player = strings.TrimSpace(player)
	return player != "" && player != AllPlayers
}

// PlayerTag returns the first known player mentioned in title, or "".
func PlayerTag(title string, players []string) string {
	for _, p := range players {
		if MatchesPlayer(title, p) {
			return p
		}
	}
	return ""
}
