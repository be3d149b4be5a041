package appmode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/output"
	"github.com/UnendingLoop/minigrep/internal/qaggr"
	"github.com/UnendingLoop/minigrep/internal/reader"
	"github.com/docker/distribution/uuid"
	"github.com/rs/zerolog/log"
)

const (
	healthTimeout = 5 * time.Second
	taskTimeout   = 1 * time.Minute
)

// RunMaster sends every source to all slave-nodes in turn and prints the
// result a quorum of them agreed on before moving to the next source.
func RunMaster(ctx context.Context, ai *model.AppInit, w io.Writer) error {
	client := &http.Client{}

	// проверить пингом, что хотя бы минимальное кол-во slave-nodes доступны
	if err := checkSlavesHealth(ctx, client, ai.Slaves, ai.Quorum); err != nil {
		return fmt.Errorf("failed to start grepping: %w", err)
	}

	cfg := ai.Search
	printer := output.NewPrinter(w, cfg.Numbered())

	var failed []error
	read := 0
	for _, fname := range cfg.Sources() {
		input, undecodable, err := reader.ReadInput(fname)
		if err != nil {
			log.Error().Err(err).Str("file", fname).Msg("failed to read file")
			failed = append(failed, err)
			if ai.FailFast {
				break
			}
			continue
		}

		task := model.TaskDTO{
			TaskID:      uuid.Generate().String(),
			Query:       cfg.Query(),
			IgnoreCase:  cfg.IgnoreCase(),
			Input:       input,
			Undecodable: undecodable,
			FileName:    fname,
		}
		matches, err := processTask(ctx, client, ai.Slaves, ai.Quorum, task)
		if err != nil {
			return errors.Join(append(failed, fmt.Errorf("failed to grep %q: %w", fname, err))...)
		}
		read++

		if err := printer.PrintMatches(fname, matches); err != nil {
			return errors.Join(append(failed, err)...)
		}
	}

	log.Debug().Int("files", read).Int("failed", len(failed)).Int("matches", printer.Found()).Msg("search finished")
	if read > 0 {
		if err := printer.Finish(); err != nil {
			return errors.Join(append(failed, err)...)
		}
	}
	return errors.Join(failed...)
}

func checkSlavesHealth(ctx context.Context, client *http.Client, slavesAddr []string, quorumN int) error {
	wg := sync.WaitGroup{}
	var goodSlaves atomic.Int64
	rCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	for _, addr := range slavesAddr {
		wg.Go(func() {
			req, err := http.NewRequestWithContext(rCtx, http.MethodGet, addr+"/ping", nil)
			if err != nil {
				return
			}

			resp, err := client.Do(req)
			if err != nil {
				log.Warn().Err(err).Str("node", addr).Msg("slave-node is unreachable")
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				goodSlaves.Add(1)
			}
		})
	}

	wg.Wait()
	res := goodSlaves.Load()
	if res < int64(quorumN) {
		return fmt.Errorf("only %d slave-nodes are OK to continue, while quorum should be %d", res, quorumN)
	}
	log.Debug().Int64("healthy", res).Int("quorum", quorumN).Msg("slave-nodes checked")

	return nil
}

func processTask(ctx context.Context, client *http.Client, nodes []string, quorumN int, dto model.TaskDTO) ([]model.Match, error) {
	raw, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("failed to MARSHAL task: %w", err)
	}

	tCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()
	task := &model.MasterTask{Task: dto, CTX: tCtx, CancelCTX: cancel}

	// буфер на все ноды, чтобы опоздавшие после кворума не блокировались
	resCollect := make(chan model.SlaveResult, len(nodes))
	wg := sync.WaitGroup{}
	for _, nodeAddr := range nodes {
		wg.Go(func() {
			sendTaskToNode(task.CTX, client, nodeAddr, raw, resCollect)
		})
	}
	go func() {
		wg.Wait()
		close(resCollect)
	}()

	res, err := qaggr.CollectAggregateResults(tCtx, resCollect, []*model.MasterTask{task}, quorumN)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func sendTaskToNode(ctx context.Context, client *http.Client, na string, raw []byte, ch chan<- model.SlaveResult) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, na+"/task", bytes.NewReader(raw))
	if err != nil {
		log.Error().Err(err).Str("node", na).Msg("failed to build task request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("node", na).Msg("failed to SEND task to slave-node")
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("node", na).Msg("slave-node rejected task")
		return
	}

	var result model.SlaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Warn().Err(err).Str("node", na).Msg("failed to UNMARSHAL result from slave-node")
		return
	}
	ch <- result
}
