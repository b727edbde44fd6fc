/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tokenizer.go
Description: Delimiter and header detection for raw delimited text. Tries comma, pipe and
tab in priority order, falls back to a virtual delimiter on runs of two or more whitespace
characters, and applies a text-vs-numeric heuristic to decide whether the first line is a header.
*/

package tokenizer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// ErrEmptyInput is returned when the input holds no non-blank line
	ErrEmptyInput = errors.New("input is empty")
	// ErrNoDelimiter is returned when no delimiter splits the first line into multiple fields
	ErrNoDelimiter = errors.New("no delimiter detected")
)

// Delimiter describes how a line is split into fields
type Delimiter struct {
	Sep     rune // Separator rune; zero for the whitespace delimiter
	Virtual bool // True when splitting on runs of two or more whitespace characters
}

var (
	Comma      = Delimiter{Sep: ','}
	Pipe       = Delimiter{Sep: '|'}
	Tab        = Delimiter{Sep: '\t'}
	Whitespace = Delimiter{Virtual: true}
)

// candidates in priority order
var candidates = []Delimiter{Comma, Pipe, Tab}

// String returns a printable name for the delimiter
func (d Delimiter) String() string {
	switch {
	case d.Virtual:
		return "whitespace"
	case d.Sep == '\t':
		return "tab"
	default:
		return string(d.Sep)
	}
}

var (
	whitespaceRunRe = regexp.MustCompile(`\s{2,}`)
	textLikeRe      = regexp.MustCompile(`^[A-Za-z_][\w\s]*$`)
	numericLikeRe   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

const (
	headerTextRatio    = 0.5
	headerNumericRatio = 0.3
)

// Result is the outcome of a successful detection
type Result struct {
	Delimiter Delimiter
	HasHeader bool
	Header    []string   // First row when HasHeader is true
	Rows      [][]string // Data rows, header excluded
}

// Columns returns the number of fields in the widest row (header included)
func (r *Result) Columns() int {
	n := len(r.Header)
	for _, row := range r.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// ReadLines reads every non-blank line from r, trimmed of surrounding whitespace
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// DetectAndSplit detects the delimiter and header presence and splits every line
func DetectAndSplit(lines []string) (*Result, error) {
	lines = nonBlank(lines)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	delim, ok := DetectDelimiter(lines[0])
	if !ok {
		return nil, ErrNoDelimiter
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, Split(line, delim))
	}

	res := &Result{Delimiter: delim}
	if len(rows) > 1 && DetectHeader(rows[0], rows[1]) {
		res.HasHeader = true
		res.Header = rows[0]
		res.Rows = rows[1:]
	} else {
		res.Rows = rows
	}
	return res, nil
}

// DetectDelimiter returns the first candidate that splits line into more than one field
func DetectDelimiter(line string) (Delimiter, bool) {
	for _, d := range candidates {
		if len(Split(line, d)) > 1 {
			return d, true
		}
	}
	if len(Split(line, Whitespace)) > 1 {
		return Whitespace, true
	}
	return Delimiter{}, false
}

// DetectHeader decides whether first is a header by comparing it with second
func DetectHeader(first, second []string) bool {
	if len(first) == 0 || len(second) == 0 {
		return false
	}

	textLike := 0
	for _, f := range first {
		if textLikeRe.MatchString(f) {
			textLike++
		}
	}
	numericLike := 0
	for _, f := range second {
		if numericLikeRe.MatchString(f) {
			numericLike++
		}
	}

	return float64(textLike)/float64(len(first)) > headerTextRatio &&
		float64(numericLike)/float64(len(second)) > headerNumericRatio
}

// Split splits a single line on the delimiter. Real delimiters honour CSV quoting and
// fall back to a plain split when the line is not valid CSV.
func Split(line string, d Delimiter) []string {
	var fields []string
	if d.Virtual {
		fields = whitespaceRunRe.Split(strings.TrimSpace(line), -1)
	} else {
		fields = splitQuoted(line, d.Sep)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func splitQuoted(line string, sep rune) []string {
	if !strings.ContainsRune(line, '"') {
		return strings.Split(line, string(sep))
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return strings.Split(line, string(sep))
	}
	return record
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
