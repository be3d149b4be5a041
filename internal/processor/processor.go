// Package processor runs a received task through the matcher and sends the result back to transport-layer
package processor

import (
	"context"
	"strconv"

	"github.com/UnendingLoop/minigrep/internal/matcher"
	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

type Processor struct{}

func (p Processor) ProcessInput(ctx context.Context, task *model.TaskDTO) *model.SlaveResult {
	result := model.SlaveResult{
		TaskID: task.TaskID,
		Output: []model.Match{},
	}

	if ctx.Err() != nil {
		result.HashSumm = Checksum(result.Output)
		return &result
	}

	lines := matcher.FromSlice(task.Input, task.Undecodable...)
	matches, err := matcher.SearchWithLineNumbers(task.Query, lines, task.IgnoreCase)
	if err != nil {
		// FromSlice yields decode errors only, so this is not expected
		log.Error().Err(err).Str("tid", task.TaskID).Msg("search failed")
	}

	// задача могла быть отменена мастером пока шел поиск
	if ctx.Err() == nil {
		result.Output = matches
	}

	result.HashSumm = Checksum(result.Output)
	return &result
}

// Checksum hashes "<n>:<line>\n" of every match in order
func Checksum(matches []model.Match) uint64 {
	hs := xxhash.New()
	for _, m := range matches {
		_, _ = hs.WriteString(strconv.Itoa(m.LineNumber))
		_, _ = hs.WriteString(":")
		_, _ = hs.WriteString(m.Line)
		_, _ = hs.WriteString("\n")
	}
	return hs.Sum64()
}
