package enums

type Source string

const (
	SourceReddit      Source = "reddit"
	SourceArcticShift Source = "arcticshift"
)
