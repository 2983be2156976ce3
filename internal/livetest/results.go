package livetest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Result is one submitted attempt.
type Result struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	Student       string       `json:"student"`
	Section       Section      `json:"section"`
	QuestionType  QuestionType `json:"questionType"`
	Question      string       `json:"question"`
	CorrectAnswer string       `json:"correctAnswer"`
	StudentAnswer string       `json:"studentAnswer"`
	Correct       bool         `json:"isCorrect"`
	// Duration is the recording length in whole seconds.
	Duration int `json:"duration"`
}

type Stats struct {
	Total    int
	Correct  int
	Accuracy int // percent, rounded
	// AverageDuration is in seconds, rounded to one decimal.
	AverageDuration float64
}

// Summarize computes the statistics of results.
func Summarize(results []Result) Stats {
	st := Stats{Total: len(results)}
	if st.Total == 0 {
		return st
	}
	var total int
	for _, r := range results {
		if r.Correct {
			st.Correct++
		}
		total += r.Duration
	}
	st.Accuracy = int(math.Round(float64(st.Correct) / float64(st.Total) * 100))
	st.AverageDuration = math.Round(float64(total)/float64(st.Total)*10) / 10
	return st
}

var csvHeader = []string{"Time", "Student", "Section", "Question Type", "Prompt/Word", "Response", "Result", "Duration (s)"}

const csvTimeLayout = "1/2/2006, 3:04:05 PM"

// WriteCSV writes results in the order given, one row per attempt.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range results {
		outcome := "Incorrect"
		if r.Correct {
			outcome = "Correct"
		}
		row := []string{
			r.Timestamp.Format(csvTimeLayout),
			r.Student,
			"Section " + string(r.Section),
			string(r.QuestionType),
			r.Question,
			r.StudentAnswer,
			outcome,
			strconv.Itoa(r.Duration),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// CSVFileName names the results download for the UTC day of now.
func CSVFileName(now time.Time) string {
	return "live-test-results-" + now.UTC().Format("2006-01-02") + ".csv"
}

// Summary is the share text for a set of results.
func Summary(results []Result) string {
	st := Summarize(results)
	return fmt.Sprintf("Live Test Results:\n%d total attempts\nAccuracy: %d%%", st.Total, st.Accuracy)
}
