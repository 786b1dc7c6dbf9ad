// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package repeatmasker provides support for reading and writing the ".out"
// annotation tables produced by RepeatMasker.
package repeatmasker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
)

// Header is written before the first record of every table.
const Header = "   SW  perc perc perc  query     position in query            matching       repeat         position in  repeat\n" +
	"score  div. del. ins.  sequence    begin     end    (left)   repeat         class/family    begin  end (left)   ID\n" +
	"\n"

const (
	headerLines = 3

	forwardToken         = "+"
	complementToken      = "C"
	higherScoringToken   = "*"
	recordFields         = 15
	recordFieldsWithMark = 16
)

// Record is one repeat annotation.  Spans are zero-based half-open
// intervals; the repeat span is given on the repeat consensus.
type Record struct {
	Score         int     `json:"score"`
	PctDivergence float64 `json:"pctDivergence"`
	PctDeleted    float64 `json:"pctDeleted"`
	PctInserted   float64 `json:"pctInserted"`

	QueryName string            `json:"queryName"`
	QuerySpan genomics.Interval `json:"querySpan"`
	// QueryLeft is the number of query bases past the end of the match.
	QueryLeft genomics.Distance `json:"queryLeft"`

	// Strand is Reverse when the match is to the complement of the repeat.
	Strand      genomics.Strand   `json:"strand"`
	RepeatName  string            `json:"repeatName"`
	RepeatClass string            `json:"repeatClass"`
	RepeatSpan  genomics.Interval `json:"repeatSpan"`
	RepeatLeft  genomics.Distance `json:"repeatLeft"`

	ID int `json:"id"`

	// InHigherScoring is set when the match overlaps a higher-scoring one.
	InHigherScoring bool `json:"inHigherScoring,omitempty"`
}

// Decode parses a single table line.
func Decode(text string) (*Record, error) {
	fields := strings.Fields(text)
	if len(fields) != recordFields && len(fields) != recordFieldsWithMark {
		return nil, format.Malformed(text, fmt.Errorf("got %d fields, want %d or %d", len(fields), recordFields, recordFieldsWithMark))
	}

	var (
		rec Record
		err error
	)
	malformed := func(what string, err error) error {
		return format.Malformed(text, fmt.Errorf("parsing %s: %v", what, err))
	}

	if rec.Score, err = strconv.Atoi(fields[0]); err != nil {
		return nil, malformed("score", err)
	}
	pcts := []*float64{&rec.PctDivergence, &rec.PctDeleted, &rec.PctInserted}
	for i, pct := range pcts {
		if *pct, err = strconv.ParseFloat(fields[1+i], 64); err != nil {
			return nil, malformed("percentage", err)
		}
	}

	rec.QueryName = fields[4]
	if rec.QuerySpan, err = parseSpan(fields[5], fields[6]); err != nil {
		return nil, withText(err, text)
	}
	if rec.QueryLeft, err = parseLeft(fields[7]); err != nil {
		return nil, malformed("query left", err)
	}

	switch fields[8] {
	case forwardToken:
		rec.Strand = genomics.Forward
	case complementToken:
		rec.Strand = genomics.Reverse
	default:
		return nil, format.Malformed(text, fmt.Errorf("invalid strand %q", fields[8]))
	}
	rec.RepeatName = fields[9]
	rec.RepeatClass = fields[10]

	// Complement matches list the repeat columns as (left) end begin.
	begin, end, left := fields[11], fields[12], fields[13]
	if rec.Strand.IsReverse() {
		begin, left = left, begin
	}
	if rec.RepeatSpan, err = parseSpan(begin, end); err != nil {
		return nil, withText(err, text)
	}
	if rec.RepeatLeft, err = parseLeft(left); err != nil {
		return nil, malformed("repeat left", err)
	}

	if rec.ID, err = strconv.Atoi(fields[14]); err != nil {
		return nil, malformed("ID", err)
	}
	if len(fields) == recordFieldsWithMark {
		if fields[15] != higherScoringToken {
			return nil, format.Malformed(text, fmt.Errorf("invalid trailing field %q", fields[15]))
		}
		rec.InHigherScoring = true
	}
	return &rec, nil
}

// Encode formats rec as a tab-separated table line without a terminator.
func Encode(rec *Record) (string, error) {
	for _, column := range []struct{ name, value string }{
		{"query name", rec.QueryName},
		{"repeat name", rec.RepeatName},
		{"repeat class", rec.RepeatClass},
	} {
		if column.value == "" || strings.IndexFunc(column.value, unicode.IsSpace) >= 0 {
			return "", fmt.Errorf("%s %q must be a single non-empty word", column.name, column.value)
		}
	}

	strand := forwardToken
	if rec.Strand.IsReverse() {
		strand = complementToken
	}
	queryFirst, queryLast := rec.QuerySpan.OneBased()
	repeatFirst, repeatLast := rec.RepeatSpan.OneBased()
	repeat := []string{
		strconv.FormatUint(repeatFirst, 10),
		strconv.FormatUint(repeatLast, 10),
		formatLeft(rec.RepeatLeft),
	}
	if rec.Strand.IsReverse() {
		repeat[0], repeat[2] = repeat[2], repeat[0]
	}

	fields := []string{
		strconv.Itoa(rec.Score),
		formatPct(rec.PctDivergence),
		formatPct(rec.PctDeleted),
		formatPct(rec.PctInserted),
		rec.QueryName,
		strconv.FormatUint(queryFirst, 10),
		strconv.FormatUint(queryLast, 10),
		formatLeft(rec.QueryLeft),
		strand,
		rec.RepeatName,
		rec.RepeatClass,
		repeat[0], repeat[1], repeat[2],
		strconv.Itoa(rec.ID),
	}
	if rec.InHigherScoring {
		fields = append(fields, higherScoringToken)
	}
	return strings.Join(fields, "\t"), nil
}

func parseSpan(first, last string) (genomics.Interval, error) {
	f, err := strconv.ParseUint(first, 10, 64)
	if err != nil {
		return genomics.Interval{}, format.Malformed("", fmt.Errorf("parsing begin: %v", err))
	}
	l, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return genomics.Interval{}, format.Malformed("", fmt.Errorf("parsing end: %v", err))
	}
	return genomics.FromOneBased(f, l)
}

// parseLeft parses a count written in parentheses, such as "(1234)".
func parseLeft(s string) (genomics.Distance, error) {
	if len(s) < 3 || s[0] != '(' || s[len(s)-1] != ')' {
		return 0, fmt.Errorf("%q is not a parenthesized count", s)
	}
	n, err := strconv.ParseInt(s[1:len(s)-1], 10, 64)
	if err != nil {
		return 0, err
	}
	return genomics.Distance(n), nil
}

func formatLeft(d genomics.Distance) string {
	return "(" + strconv.FormatInt(int64(d), 10) + ")"
}

// formatPct uses one decimal place, as RepeatMasker does, unless that would
// lose precision.
func formatPct(f float64) string {
	s := strconv.FormatFloat(f, 'f', 1, 64)
	if v, _ := strconv.ParseFloat(s, 64); v != f {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

func withText(err error, text string) error {
	var e *format.Error
	if errors.As(err, &e) {
		e.Text = text
	}
	return err
}
