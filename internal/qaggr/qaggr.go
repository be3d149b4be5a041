// Package qaggr - provides method to aggregate all results received from slave-nodes and reach quorum
package qaggr

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/rs/zerolog/log"
)

var ErrNoQuorum = errors.New("no quorum")

type taskTotals struct {
	votes int
	data  []model.Match
}

// CollectAggregateResults counts the answers per task and checksum until every
// task has quorum equal answers. A task's CancelCTX is called as soon as it
// reaches quorum. Results are returned in the order of tasks.
func CollectAggregateResults(ctx context.Context, ch <-chan model.SlaveResult, tasks []*model.MasterTask, quorum int) ([][]model.Match, error) {
	quorumResults := make(map[string][]model.Match, len(tasks))

	// готовим мапу задач [TaskID]:*MasterTask чтобы по полученному результату быстро обновлять resMap
	tasksMap := make(map[string]*model.MasterTask, len(tasks))
	for i := range tasks {
		tasksMap[tasks[i].Task.TaskID] = tasks[i]
	}

	// мапа мап для подсчета каждой вариации хеш-суммы по каждому заданию
	resMap := make(map[string]map[uint64]*taskTotals)

	noQuorum := func() error {
		return fmt.Errorf("%w: deadline exceeded or cancelled without reaching quorum: %w", ErrNoQuorum, ctx.Err())
	}

	for len(quorumResults) < len(tasksMap) {
		if ctx.Err() != nil {
			return nil, noQuorum()
		}

		select {
		case <-ctx.Done():
			return nil, noQuorum()
		case newRes, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("%w: all slave-nodes answered, %d of %d tasks reached quorum %d",
					ErrNoQuorum, len(quorumResults), len(tasksMap), quorum)
			}

			task, taskExists := tasksMap[newRes.TaskID]
			if !taskExists {
				log.Warn().Str("tid", newRes.TaskID).Msg("result for unknown task dropped")
				continue
			}
			if _, done := quorumResults[newRes.TaskID]; done {
				continue
			}

			submap, resExists := resMap[newRes.TaskID]
			if !resExists {
				submap = make(map[uint64]*taskTotals)
				resMap[newRes.TaskID] = submap
			}
			record, hashExists := submap[newRes.HashSumm]
			if !hashExists {
				record = &taskTotals{data: newRes.Output}
				submap[newRes.HashSumm] = record
			}
			record.votes++

			if record.votes >= quorum { // кворум достигнут - отменяем контекст http-запросов по этой задаче
				if task.CancelCTX != nil {
					task.CancelCTX()
				}
				quorumResults[newRes.TaskID] = record.data
				delete(resMap, newRes.TaskID)
			}
		}
	}

	// формируем результат
	resMatches := make([][]model.Match, 0, len(tasks))
	for _, v := range tasks {
		resMatches = append(resMatches, quorumResults[v.Task.TaskID])
	}

	return resMatches, nil
}
