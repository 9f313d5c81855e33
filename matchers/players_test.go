package matchers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlayerNames_RepeatedNameOnly(t *testing.T) {
	titles := []string{
		"LeBron James scores 40",
		"LeBron James injury update",
		"Random Headline here",
	}

	assert.Equal(t, []string{"LeBron James"}, ExtractPlayerNames(titles))
}

func TestExtractPlayerNames_CountsAcrossAndWithinTitles(t *testing.T) {
	titles := []string{
		"Stephen Curry and Stephen Curry again",
		"Jayson Tatum drops 50",
		"Post Game Thread: Celtics beat Jayson Tatum's old team",
	}

	assert.Equal(t, []string{"Jayson Tatum", "Stephen Curry"}, ExtractPlayerNames(titles))
}

func TestExtractPlayerNames_CamelCasedWords(t *testing.T) {
	titles := []string{"DeMar DeRozan buzzer beater", "DeMar DeRozan postgame", "CJ McCollum trade", "CJ McCollum signs"}

	// "CJ" is not a name word.
	assert.Equal(t, []string{"DeMar DeRozan"}, ExtractPlayerNames(titles))
}

func TestExtractPlayerNames_AccentedNamesAreNotTruncated(t *testing.T) {
	titles := []string{
		"Nikola Jokić triple double again",
		"Nikola Jokić wins MVP",
		"Luka Dončić drops 45",
		"Luka Dončić trade rumors",
	}

	assert.Empty(t, ExtractPlayerNames(titles))
}

func TestCandidateNames_UnicodeBoundaries(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"José Calderón passes to Kyle Lowry", []string{"Kyle Lowry"}},
		{"Dončić and Kyrie Irving", []string{"Kyrie Irving"}},
		{"ÉJamal Murray", nil},
		{"Jamal Murray_x", nil},
		{"Nikola Jokić, Jamal Murray", []string{"Jamal Murray"}},
		{"LeBron James", []string{"LeBron James"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CandidateNames(tt.title), tt.title)
	}
}

func TestExtractPlayerNames_Empty(t *testing.T) {
	assert.Empty(t, ExtractPlayerNames(nil))
	assert.Empty(t, ExtractPlayerNames([]string{"", "all lower case", "ONE"}))
}

func TestExtractPlayerNames_Properties(t *testing.T) {
	titles := []string{
		"Nikola Jokic triple double",
		"Nikola Jokic MVP odds",
		"Western Conference standings",
		"Western Conference finals preview",
		"Luka Doncic out",
		"Anthony Edwards, Anthony Edwards, Anthony Edwards",
	}
	strict := regexp.MustCompile(`^[A-Z][a-zA-Z]+ [A-Z][a-zA-Z]+$`)

	first := ExtractPlayerNames(titles)
	second := ExtractPlayerNames(titles)
	assert.Equal(t, first, second)

	seen := map[string]bool{}
	for _, name := range first {
		assert.False(t, seen[name], "duplicate %q", name)
		seen[name] = true
		assert.Regexp(t, strict, name)

		count := 0
		for _, title := range titles {
			count += len(CandidateNames(title)) - len(removeName(CandidateNames(title), name))
		}
		assert.GreaterOrEqual(t, count, MinNameOccurrences, name)
	}
	assert.NotContains(t, first, "Luka Doncic")
	// False positives are accepted by design of the heuristic.
	assert.Contains(t, first, "Western Conference")
}

func removeName(names []string, name string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func TestMatchesPlayer(t *testing.T) {
	assert.True(t, MatchesPlayer("LeBron James scores 40", "LeBron James"))
	assert.True(t, MatchesPlayer("lebron james scores 40", "LeBron James"))
	assert.True(t, MatchesPlayer("WHAT A GAME BY LEBRON JAMES", "lebron james"))
	assert.False(t, MatchesPlayer("Bronny James debut", "LeBron James"))
	assert.False(t, MatchesPlayer("", "LeBron James"))
}

func TestIsPlayerSelected(t *testing.T) {
	assert.False(t, IsPlayerSelected(""))
	assert.False(t, IsPlayerSelected("  "))
	assert.False(t, IsPlayerSelected(AllPlayers))
	assert.True(t, IsPlayerSelected("LeBron James"))
}

func TestPlayerTag(t *testing.T) {
	players := []string{"Jayson Tatum", "LeBron James"}

	assert.Equal(t, "LeBron James", PlayerTag("LeBron James injury update", players))
	assert.Equal(t, "Jayson Tatum", PlayerTag("jayson tatum and LeBron James", players))
	assert.Equal(t, "", PlayerTag("Trade deadline recap", players))
}
