package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/busylightd/internal/logging"
)

// LogsResponse carries recent log entries from the ring buffer.
type LogsResponse struct {
	Body struct {
		Entries []logging.LogEntry `json:"entries" doc:"Recent log entries, oldest first"`
	}
}

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent logs",
		Description: "Read the in-memory log ring buffer",
		Tags:        []string{"logs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"200" doc:"Maximum entries to return"`
	}) (*LogsResponse, error) {
		resp := &LogsResponse{}
		resp.Body.Entries = []logging.LogEntry{}

		buffer := logging.GetBuffer()
		if buffer == nil {
			return resp, nil
		}
		entries := buffer.ReadAll()
		if input.Limit > 0 && len(entries) > input.Limit {
			entries = entries[len(entries)-input.Limit:]
		}
		resp.Body.Entries = entries
		return resp, nil
	})
}
