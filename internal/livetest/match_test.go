package livetest

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestMatchSectionA(t *testing.T) {
	tests := []struct {
		answer, correct string
		want            bool
	}{
		{"cow", "cow", true},
		{"  COW ", "cow", true},
		{"cattle", "cow", true},
		{"it is a bull", "cow", true},
		{"goat", "cow", false},
		{"eastern", "east", true},
		{"west", "east", false},
		{"b", "B. Cow", true},
		{"option b", "B. Cow", true},
		{"lion", "B. Cow", false},
		{"1a", "1 with A", true},
		{"one with a", "1 with A", true},
		{"paris", "Paris", true},
		{"", "cow", false},
		{"   ", "east", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(SectionA, tt.answer, tt.correct), "%q vs %q", tt.answer, tt.correct)
	}
}

func TestMatchSectionB(t *testing.T) {
	assert.True(t, Match(SectionB, "C-A-T", "cat"))
	assert.True(t, Match(SectionB, "c a t", "cat"))
	assert.True(t, Match(SectionB, "cat", "cat"))
	assert.False(t, Match(SectionB, "ca", "cat"))
	assert.False(t, Match(SectionB, "c-a-t-s", "cat"))
	assert.False(t, Match(SectionB, " - ", "cat"))
}

func TestSpellOut(t *testing.T) {
	assert.Equal(t, "C-A-T", SpellOut("cat"))
	assert.Equal(t, "", SpellOut(""))
}

func sine(n int, bin int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/FFTSize)
	}
	return out
}

func TestMeter(t *testing.T) {
	m := NewMeter()
	assert.Zero(t, m.Level(make([]float64, FFTSize)))
	assert.Zero(t, m.Level(nil))

	loud := sine(FFTSize, 20, 1)
	first := m.Level(loud)
	second := m.Level(loud)
	assert.Greater(t, first, 0.0)
	assert.GreaterOrEqual(t, second, first, "smoothing ramps up")
	assert.LessOrEqual(t, second, 100.0)

	m.Reset()
	quiet := NewMeter().Level(sine(FFTSize, 20, 0.001))
	assert.Less(t, quiet, first)
}

func TestSpeechTag(t *testing.T) {
	assert.Equal(t, language.MustParse("kn-IN"), SpeechTag("english-kannada"))
	assert.Equal(t, language.MustParse("hi-IN"), SpeechTag("english-hindi"))
	assert.Equal(t, language.MustParse("te-IN"), SpeechTag("english-telugu"))
	assert.Equal(t, language.AmericanEnglish, SpeechTag("english"))
	assert.Equal(t, language.AmericanEnglish, SpeechTag(""))

	require.Len(t, Languages, 4)
	assert.Equal(t, "English", Languages[0].Label)
	assert.Equal(t, "English + Kannada", Languages[1].Label)
}

func TestParseWordList(t *testing.T) {
	words, err := ParseWordList(strings.NewReader("cat\n\n  dog \r\nbook\n"), "words.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog", "book"}, words)

	words, err = ParseWordList(strings.NewReader("water,noun\nschool\n\"happy\",adj,extra\n"), "list.CSV")
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "school", "happy"}, words)

	_, err = ParseWordList(strings.NewReader("cat"), "words.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedWordList)

	_, err = ParseWordList(strings.NewReader("\n \n"), "empty.txt")
	assert.ErrorIs(t, err, ErrEmptyWordList)
}

func TestWriteCSV(t *testing.T) {
	ts := time.Date(2025, 3, 4, 14, 5, 9, 0, time.UTC)
	results := []Result{
		{Timestamp: ts, Student: "Asha", Section: SectionB, QuestionType: Spelling,
			Question: `Spell: "cat"`, StudentAnswer: "C-A-T", Correct: true, Duration: 4},
		{Timestamp: ts, Student: "Ravi", Section: SectionA, QuestionType: MCQ,
			Question: "Which one is a domestic animal?", StudentAnswer: "lion, maybe", Duration: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time,Student,Section,Question Type,Prompt/Word,Response,Result,Duration (s)", lines[0])
	assert.Equal(t, `"3/4/2025, 2:05:09 PM",Asha,Section B,spelling,"Spell: ""cat""",C-A-T,Correct,4`, lines[1])
	assert.Equal(t, `"3/4/2025, 2:05:09 PM",Ravi,Section A,mcq,Which one is a domestic animal?,"lion, maybe",Incorrect,2`, lines[2])
}

func TestCSVFileNameAndSummary(t *testing.T) {
	assert.Equal(t, "live-test-results-2025-03-04.csv",
		CSVFileName(time.Date(2025, 3, 4, 23, 0, 0, 0, time.UTC)))

	results := []Result{{Correct: true}, {Correct: false}, {Correct: true}}
	assert.Equal(t, "Live Test Results:\n3 total attempts\nAccuracy: 67%", Summary(results))
	assert.Equal(t, Stats{}, Summarize(nil))
}
