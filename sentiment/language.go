package sentiment

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Languages the viewer can tag. Anything else resolves to the closest of these
// or to "".
var detectable = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
}

type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectable...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LanguageDetector{detector: detector}
}

// Detect returns the lower-case ISO 639-1 code of the text's language, or ""
// when the detector cannot decide.
func (d *LanguageDetector) Detect(text string) string {
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// Languages lists the ISO 639-1 codes Detect can return.
func (d *LanguageDetector) Languages() []string {
	codes := make([]string, len(detectable))
	for i, l := range detectable {
		codes[i] = strings.ToLower(l.IsoCode639_1().String())
	}
	return codes
}
