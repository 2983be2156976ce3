package livetest

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a speech language choice offered to the teacher.
type Language struct {
	Value string
	Label string
	Tag   language.Tag
}

var (
	kannada = language.MustParse("kn-IN")
	hindi   = language.MustParse("hi-IN")
	telugu  = language.MustParse("te-IN")
)

// Languages lists the speech options in menu order.
var Languages = []Language{
	{Value: "english", Tag: language.AmericanEnglish},
	{Value: "english-kannada", Tag: kannada},
	{Value: "english-hindi", Tag: hindi},
	{Value: "english-telugu", Tag: telugu},
}

func init() {
	names := display.English.Languages()
	for i, l := range Languages {
		if l.Tag == language.AmericanEnglish {
			Languages[i].Label = "English"
			continue
		}
		base, _ := l.Tag.Base()
		Languages[i].Label = "English + " + names.Name(base)
	}
}

// SpeechTag picks the voice for a language choice. Anything unrecognised
// speaks American English.
func SpeechTag(choice string) language.Tag {
	c := strings.ToLower(choice)
	switch {
	case strings.Contains(c, "kannada"):
		return kannada
	case strings.Contains(c, "hindi"):
		return hindi
	case strings.Contains(c, "telugu"):
		return telugu
	}
	return language.AmericanEnglish
}
