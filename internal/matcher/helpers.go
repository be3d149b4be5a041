package matcher

import (
	"iter"

	"github.com/UnendingLoop/minigrep/internal/model"
)

// FromSlice yields the given lines. Numbers listed in undecodable (1-based)
// yield a DecodeError in place of their text.
func FromSlice(lines []string, undecodable ...int) iter.Seq2[string, error] {
	skip := make(map[int]struct{}, len(undecodable))
	for _, n := range undecodable {
		skip[n] = struct{}{}
	}

	return func(yield func(string, error) bool) {
		for i, line := range lines {
			if _, ok := skip[i+1]; ok {
				if !yield("", &model.DecodeError{Line: i + 1, Err: model.ErrInvalidEncoding}) {
					return
				}
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
