// Package transport provides a new server-entity(by ginext) for slave-mode operability with handlers to serve endpoints
package transport

import (
	"context"
	"net/http"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/wb-go/wbf/ginext"
)

type TaskProcessor interface {
	ProcessInput(ctx context.Context, task *model.TaskDTO) *model.SlaveResult
}

func NewSlaveServer(addr string, proc TaskProcessor) *http.Server {
	engine := ginext.New("release")
	engine.GET("/ping", HealthCheck)
	engine.POST("/task", ReceiveTask(proc))

	return &http.Server{
		Addr:    addr,
		Handler: engine,
	}
}

func HealthCheck(ctx *ginext.Context) {
	log.Debug().Str("remote", ctx.ClientIP()).Msg("received a healthcheck request")
	ctx.Status(http.StatusOK)
}

func ReceiveTask(proc TaskProcessor) func(ctx *ginext.Context) {
	return func(ctx *ginext.Context) {
		var task model.TaskDTO

		if err := ctx.ShouldBindJSON(&task); err != nil {
			log.Warn().Err(err).Msg("failed to parse task")
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse task from body: " + err.Error()})
			return
		}

		log.Info().Str("tid", task.TaskID).Str("file", task.FileName).Int("lines", len(task.Input)).Msg("received task")

		res := proc.ProcessInput(ctx.Request.Context(), &task)
		log.Debug().Str("tid", res.TaskID).Int("matches", len(res.Output)).Uint64("hash", res.HashSumm).Msg("calculated result")

		ctx.JSON(http.StatusOK, res)
	}
}
