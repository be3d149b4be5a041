// Package matcher filters a sequence of lines by substring containment of the query
package matcher

import (
	"errors"
	"iter"
	"strings"

	"github.com/UnendingLoop/minigrep/internal/model"
	"golang.org/x/text/cases"
)

// FindMatch reports whether line contains query. With ignoreCase both sides
// are case-folded the same way before comparing.
func FindMatch(query, line string, ignoreCase bool) bool {
	if ignoreCase { //-i
		return strings.Contains(fold(line), fold(query))
	}
	return strings.Contains(line, query)
}

// Search returns the lines containing query, in input order.
// Lines that failed to decode are skipped. Any other error stops the scan
// and is returned together with the lines matched before it.
func Search(query string, lines iter.Seq2[string, error]) ([]string, error) {
	return collectLines(query, lines, false)
}

// SearchCaseInsensitive is Search with case folding of query and lines.
func SearchCaseInsensitive(query string, lines iter.Seq2[string, error]) ([]string, error) {
	return collectLines(query, lines, true)
}

// SearchWithLineNumbers pairs every matching line with its 1-based position.
// Positions count all lines, including non-matching and undecodable ones.
func SearchWithLineNumbers(query string, lines iter.Seq2[string, error], ignoreCase bool) ([]model.Match, error) {
	result := []model.Match{}
	err := scan(query, lines, ignoreCase, func(m model.Match) {
		result = append(result, m)
	})
	return result, err
}

func collectLines(query string, lines iter.Seq2[string, error], ignoreCase bool) ([]string, error) {
	result := []string{}
	err := scan(query, lines, ignoreCase, func(m model.Match) {
		result = append(result, m.Line)
	})
	return result, err
}

func scan(query string, lines iter.Seq2[string, error], ignoreCase bool, emit func(model.Match)) error {
	lineN := 0
	for line, err := range lines {
		if err != nil {
			var decodeErr *model.DecodeError
			if errors.As(err, &decodeErr) {
				lineN++
				continue
			}
			return err
		}
		lineN++

		if !FindMatch(query, line, ignoreCase) {
			continue
		}
		emit(model.Match{LineNumber: lineN, Line: line})
	}
	return nil
}

// caser keeps state between calls, so every fold gets a fresh one
func fold(s string) string {
	return cases.Fold().String(s)
}
