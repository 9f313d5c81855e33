package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageDetector_Detect(t *testing.T) {
	d := NewLanguageDetector()

	assert.Equal(t, "en", d.Detect("The Lakers traded their first round pick to the Jazz for a veteran center"))
	assert.Equal(t, "es", d.Detect("Los Lakers ganaron el partido de anoche con una gran actuación del equipo"))
}

func TestLanguageDetector_Languages(t *testing.T) {
	assert.Equal(t, []string{"en", "es", "fr", "de", "pt", "it"}, NewLanguageDetector().Languages())
}
