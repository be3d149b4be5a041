// Package appmode provides the run loops for the 'local', 'master' and 'slave' modes
package appmode

import (
	"context"
	"errors"
	"io"

	"github.com/UnendingLoop/minigrep/internal/matcher"
	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/output"
	"github.com/UnendingLoop/minigrep/internal/reader"
	"github.com/rs/zerolog/log"
)

// RunLocal searches the sources one after another and prints each as soon as
// it is done. An unreadable source is logged and skipped, or ends the run
// with FailFast. The returned error joins every *model.SourceError.
func RunLocal(ctx context.Context, ai *model.AppInit, w io.Writer) error {
	cfg := ai.Search
	printer := output.NewPrinter(w, cfg.Numbered())

	var failed []error
	read := 0
	for _, name := range cfg.Sources() {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(failed, err)...)
		}

		err := searchSource(cfg, name, printer)
		if err != nil {
			var srcErr *model.SourceError
			if !errors.As(err, &srcErr) {
				return errors.Join(append(failed, err)...)
			}
			log.Error().Err(srcErr.Err).Str("file", name).Msg("failed to search file")
			failed = append(failed, err)
			if ai.FailFast {
				break
			}
			continue
		}
		read++
	}

	log.Debug().Int("files", read).Int("failed", len(failed)).Int("matches", printer.Found()).Msg("search finished")
	if read > 0 {
		if err := printer.Finish(); err != nil {
			return errors.Join(append(failed, err)...)
		}
	}
	return errors.Join(failed...)
}

func searchSource(cfg model.SearchConfig, name string, printer *output.Printer) error {
	src, err := reader.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	if !printer.Numbered() {
		search := matcher.Search
		if cfg.IgnoreCase() {
			search = matcher.SearchCaseInsensitive
		}
		lines, err := search(cfg.Query(), src.Lines())
		if err != nil {
			return err
		}
		return printer.PrintLines(lines)
	}

	matches, err := matcher.SearchWithLineNumbers(cfg.Query(), src.Lines(), cfg.IgnoreCase())
	if err != nil {
		return err
	}
	log.Debug().Str("file", name).Int("matches", len(matches)).Msg("file searched")
	return printer.PrintMatches(name, matches)
}
