package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/busylightd/internal/updater"
)

// UpdateStatusResponse carries the update check result.
type UpdateStatusResponse struct {
	Body updater.Status
}

func (s *Server) registerUpdateRoutes() {
	if s.opts.Updater == nil {
		s.logger.Debug("updater not configured, skipping update routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "check-update",
		Method:      http.MethodGet,
		Path:        "/api/update",
		Summary:     "Check update",
		Description: "Check whether a newer release is available",
		Tags:        []string{"system"},
		Errors:      []int{401, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*UpdateStatusResponse, error) {
		status, err := s.opts.Updater.Check(ctx)
		if err != nil {
			return nil, huma.Error502BadGateway("update check failed", err)
		}
		return &UpdateStatusResponse{Body: *status}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-update",
		Method:      http.MethodPost,
		Path:        "/api/update",
		Summary:     "Apply update",
		Description: "Download and install the latest release; the daemon must be restarted afterwards",
		Tags:        []string{"system"},
		Errors:      []int{401, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*UpdateStatusResponse, error) {
		status, err := s.opts.Updater.Apply(ctx)
		if err != nil {
			return nil, huma.Error502BadGateway("update failed", err)
		}
		return &UpdateStatusResponse{Body: *status}, nil
	})
}
