package appmode

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/processor"
	"github.com/UnendingLoop/minigrep/internal/transport"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// RunSlave serves search tasks until ctx is done. A failing listener calls stop.
func RunSlave(ctx context.Context, stop context.CancelFunc, ai *model.AppInit) error {
	srv := transport.NewSlaveServer(ai.Address, processor.Processor{})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("slave running")
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
			return
		}
		log.Info().Msg("server gracefully stopping...")
		serveErr <- nil
	}()

	<-ctx.Done()

	// Закрытие всех соединений сервера
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Str("address", ai.Address).Msg("failed to shutdown slave-node correctly")
		return err
	}
	log.Info().Str("address", ai.Address).Msg("slave-node server is closed")

	return <-serveErr
}
