package catalogue

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Format names reported in LoadReport.
const (
	FormatJSON      = "json"
	FormatDelimited = "delimited"
)

// Load reads a catalogue file. The layout is chosen by extension: ".json"
// is parsed as a JSON array, anything else as delimiter-separated text.
//
// Malformed rows are skipped and listed in the report; a missing file,
// an unreadable header or a catalogue with no valid rows returns a
// *vad.DataLoadError.
func Load(path string) (*Catalogue, *LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &vad.DataLoadError{Path: path, Reason: "cannot read file", Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	report := &LoadReport{Path: path}
	var entries []vad.Entry

	if strings.EqualFold(filepath.Ext(path), ".json") {
		report.Format = FormatJSON
		entries, err = parseJSON(data, report)
	} else {
		report.Format = FormatDelimited
		entries, err = parseDelimited(data, report)
	}
	if err != nil {
		var dle *vad.DataLoadError
		if errors.As(err, &dle) && dle.Path == "" {
			dle.Path = path
		}
		return nil, report, err
	}

	for _, w := range report.Warnings {
		log.Printf("Warning: %s:%d: skipped row: %s", path, w.Line, w.Reason)
	}

	report.Loaded = len(entries)
	if len(entries) == 0 {
		return nil, report, &vad.DataLoadError{Path: path, Reason: "no valid rows"}
	}

	return build(entries), report, nil
}

// jsonEntry uses pointers so missing fields are distinguishable from zero.
type jsonEntry struct {
	Term      *string  `json:"term"`
	Valence   *float64 `json:"valence"`
	Arousal   *float64 `json:"arousal"`
	Dominance *float64 `json:"dominance"`
}

func parseJSON(data []byte, report *LoadReport) ([]vad.Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &vad.DataLoadError{Reason: "expected a JSON array of entries", Err: err}
	}

	entries := make([]vad.Entry, 0, len(raw))
	for i, msg := range raw {
		line := i + 1
		report.Rows++

		var je jsonEntry
		if err := json.Unmarshal(msg, &je); err != nil {
			report.warn(line, "entry %d: %v", line, err)
			continue
		}
		if je.Term == nil || je.Valence == nil || je.Arousal == nil || je.Dominance == nil {
			report.warn(line, "entry %d: missing field", line)
			continue
		}

		e := vad.Entry{
			Term: strings.TrimSpace(*je.Term),
			V:    *je.Valence,
			A:    *je.Arousal,
			D:    *je.Dominance,
		}
		if reason := checkEntry(e); reason != "" {
			report.warn(line, "entry %d: %s", line, reason)
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// columns maps the catalogue fields to positions in a delimited row.
type columns struct {
	term, v, a, d int
}

func (c columns) width() int {
	w := c.term
	for _, i := range []int{c.v, c.a, c.d} {
		if i > w {
			w = i
		}
	}
	return w + 1
}

// sniffDelimiter picks the separator from the header line.
func sniffDelimiter(header string) rune {
	for _, r := range []rune{'\t', ',', ';'} {
		if strings.ContainsRune(header, r) {
			return r
		}
	}
	return '\t'
}

// headerColumns maps named header fields, falling back to positional order
// term, valence, arousal, dominance when the header does not name them.
func headerColumns(header []string) columns {
	cols := columns{term: -1, v: -1, a: -1, d: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "term", "word", "emotion":
			cols.term = i
		case "valence", "v":
			cols.v = i
		case "arousal", "a":
			cols.a = i
		case "dominance", "d":
			cols.d = i
		}
	}
	if cols.term < 0 || cols.v < 0 || cols.a < 0 || cols.d < 0 {
		return columns{term: 0, v: 1, a: 2, d: 3}
	}
	return cols
}

func parseDelimited(data []byte, report *LoadReport) ([]vad.Entry, error) {
	firstLine := string(data)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(firstLine)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &vad.DataLoadError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, &vad.DataLoadError{Line: 1, Reason: "unreadable header", Err: err}
	}
	if len(header) < 4 {
		return nil, &vad.DataLoadError{Line: 1, Reason: "header must have at least 4 columns"}
	}
	cols := headerColumns(header)

	var entries []vad.Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				report.Rows++
				report.warn(pe.Line, "%v", pe.Err)
				continue
			}
			return nil, &vad.DataLoadError{Reason: "read failed", Err: err}
		}

		line, _ := r.FieldPos(0)
		report.Rows++

		if len(record) < cols.width() {
			report.warn(line, "expected %d fields, got %d", cols.width(), len(record))
			continue
		}

		e, reason := parseRow(record, cols)
		if reason != "" {
			report.warn(line, "%s", reason)
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func parseRow(record []string, cols columns) (vad.Entry, string) {
	e := vad.Entry{Term: strings.TrimSpace(record[cols.term])}

	targets := []*float64{&e.V, &e.A, &e.D}
	for k, i := range []int{cols.v, cols.a, cols.d} {
		f, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return e, "non-numeric value " + strconv.Quote(record[i])
		}
		*targets[k] = f
	}

	return e, checkEntry(e)
}
