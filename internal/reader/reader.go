// Package reader opens search sources and turns them into lazy line sequences
package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/UnendingLoop/minigrep/internal/model"
)

// MaxLineSize is the longest line a source may contain
const MaxLineSize = 1024 * 1024

type Source struct {
	name string
	rc   io.ReadCloser
}

// Open opens a file by name, or stdin for model.StdinSource.
// Failures come back as *model.SourceError.
func Open(name string) (*Source, error) {
	if name == model.StdinSource {
		return &Source{name: name, rc: io.NopCloser(os.Stdin)}, nil
	}

	// проверяем открывается ли файл
	info, err := os.Stat(name)
	if err != nil {
		return nil, &model.SourceError{Source: name, Err: err}
	}
	// проверяем не папка ли это
	if info.IsDir() {
		return nil, &model.SourceError{Source: name, Err: errors.New("is a directory")}
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, &model.SourceError{Source: name, Err: err}
	}
	return &Source{name: name, rc: file}, nil
}

func (s *Source) Name() string {
	return s.name
}

// Lines is single-pass: the underlying reader is consumed as it is iterated.
// Read failures are wrapped into *model.SourceError.
func (s *Source) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for line, err := range Lines(s.rc) {
			var decodeErr *model.DecodeError
			if err != nil && !errors.As(err, &decodeErr) {
				err = &model.SourceError{Source: s.name, Err: err}
			}
			if !yield(line, err) {
				return
			}
		}
	}
}

func (s *Source) Close() error {
	return s.rc.Close()
}

// Lines splits r into lines without their terminators ("\n" or "\r\n").
// A line that is not valid UTF-8 or is longer than MaxLineSize yields a
// *model.DecodeError and reading goes on with the next line. A read failure
// yields one last error item.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReaderSize(r, 64*1024)

		lineN := 0
		for {
			line, tooLong, err := readLine(br)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", fmt.Errorf("failed after line %d: %w", lineN, err))
				}
				return
			}
			lineN++

			switch {
			case tooLong:
				if !yield("", &model.DecodeError{Line: lineN, Err: model.ErrLineTooLong}) {
					return
				}
			case !utf8.Valid(line):
				if !yield("", &model.DecodeError{Line: lineN, Err: model.ErrInvalidEncoding}) {
					return
				}
			default:
				if !yield(string(line), nil) {
					return
				}
			}
		}
	}
}

// readLine returns the next full line. The rest of an overlong line is
// consumed and dropped. io.EOF comes only when no line is left.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	chunk, isPrefix, err := br.ReadLine()
	if err != nil {
		return nil, false, err
	}
	// chunk is only valid until the next read
	line := append([]byte(nil), chunk...)
	tooLong := len(line) > MaxLineSize

	for isPrefix {
		chunk, isPrefix, err = br.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if tooLong {
			continue
		}
		line = append(line, chunk...)
		if len(line) > MaxLineSize {
			tooLong = true
			line = nil
		}
	}
	if tooLong {
		return nil, true, nil
	}
	return line, false, nil
}

// ReadInput loads the whole source into memory. Undecodable lines are kept
// as empty strings and their 1-based numbers are returned separately.
func ReadInput(name string) ([]string, []int, error) {
	src, err := Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	result := make([]string, 0)
	var undecodable []int
	for line, err := range src.Lines() {
		var decodeErr *model.DecodeError
		switch {
		case err == nil:
			result = append(result, line)
		case errors.As(err, &decodeErr):
			result = append(result, "")
			undecodable = append(undecodable, decodeErr.Line)
		default:
			return nil, nil, err
		}
	}
	return result, undecodable, nil
}
