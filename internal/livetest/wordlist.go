package livetest

import (
	"bufio"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedWordList = errors.New("please select a valid CSV or TXT file")
	ErrEmptyWordList       = errors.New("word list has no words")
)

// ParseWordList reads spelling words from a .txt file, one per line, or a
// .csv file, taking the first column. Blank entries are skipped.
func ParseWordList(r io.Reader, name string) ([]string, error) {
	var (
		words []string
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		words, err = readLines(r)
	case ".csv":
		words, err = readFirstColumn(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedWordList, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	return words, nil
}

func readLines(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	return words, sc.Err()
}

func readFirstColumn(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var words []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return words, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		if w := strings.TrimSpace(rec[0]); w != "" {
			words = append(words, w)
		}
	}
}
