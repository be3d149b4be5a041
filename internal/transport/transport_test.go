package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/processor"
	"github.com/UnendingLoop/minigrep/internal/transport"
	"github.com/stretchr/testify/require"
)

type mockProcessor struct {
	returnResultFn func(ctx context.Context, task *model.TaskDTO) *model.SlaveResult
}

func (m mockProcessor) ProcessInput(ctx context.Context, task *model.TaskDTO) *model.SlaveResult {
	return m.returnResultFn(ctx, task)
}

func TestHealthCheck(t *testing.T) {
	srv := transport.NewSlaveServer("", mockProcessor{})
	require.NotNil(t, srv, "NewSlaveServer returned nil-server")

	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	srv.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestReceiveTask(t *testing.T) {
	cases := []struct {
		name       string
		mockProcFn *mockProcessor
		ttask      *model.TaskDTO
		wantCode   int
		wantTaskID string
	}{
		{
			name: "Positive - successful 200OK",
			mockProcFn: &mockProcessor{
				returnResultFn: func(ctx context.Context, task *model.TaskDTO) *model.SlaveResult {
					return &model.SlaveResult{TaskID: task.TaskID}
				},
			},
			ttask: &model.TaskDTO{
				TaskID: "taskID",
				Query:  "pattern",
				Input:  []string{},
			},
			wantCode:   http.StatusOK,
			wantTaskID: "taskID",
		},
		{
			name: "Negative - empty task 400BadRequest",
			mockProcFn: &mockProcessor{
				returnResultFn: func(ctx context.Context, task *model.TaskDTO) *model.SlaveResult {
					t.Fatal("processor must not be called for a broken task")
					return nil
				},
			},
			ttask:    nil,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Negative - missing query 400BadRequest",
			mockProcFn: &mockProcessor{
				returnResultFn: func(ctx context.Context, task *model.TaskDTO) *model.SlaveResult {
					t.Fatal("processor must not be called for a broken task")
					return nil
				},
			},
			ttask:    &model.TaskDTO{TaskID: "taskID"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			srv := transport.NewSlaveServer("", tt.mockProcFn)
			require.NotNil(t, srv, "NewSlaveServer returned nil-server")
			raw, _ := json.Marshal(tt.ttask)
			body := bytes.NewReader(raw)

			req := httptest.NewRequest("POST", "/task", body)
			w := httptest.NewRecorder()

			srv.Handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				var res model.SlaveResult
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				require.Equal(t, tt.wantTaskID, res.TaskID)
			}
		})
	}
}

func TestReceiveTaskWithProcessor(t *testing.T) {
	srv := transport.NewSlaveServer("", processor.Processor{})
	raw, err := json.Marshal(model.TaskDTO{
		TaskID:     "tid",
		Query:      "rUsT",
		IgnoreCase: true,
		Input:      []string{"Rust:", "safe, fast, productive.", "Pick three.", "Trust me."},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/task", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res model.SlaveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, []model.Match{{LineNumber: 1, Line: "Rust:"}, {LineNumber: 4, Line: "Trust me."}}, res.Output)
	require.Equal(t, processor.Checksum(res.Output), res.HashSumm)
}
