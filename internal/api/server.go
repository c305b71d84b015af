// Package api is the HTTP façade over the controller: a Huma v2 API on
// the stdlib mux with basic auth, CORS, SSE events, and prometheus
// metrics. It only translates controller results; all device-plane
// recovery stays below this layer.
package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/logging"
	"github.com/smazurov/busylightd/internal/updater"
	"github.com/smazurov/busylightd/internal/version"
)

// Options configures the API server.
type Options struct {
	Controller  *controller.Controller
	EventBus    *events.Bus
	Updater     *updater.Service
	AuthUser    string
	AuthPass    string
	CorsOrigins []string
	DefaultDim  float64
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	opts       *Options
	logger     *slog.Logger
}

// NewServer builds the server and registers every route.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := NewCORSConfig(opts.CorsOrigins)
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("busylightd API", version.Get().Version)
	config.Info.Description = "Control USB presence-indicator lights"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {Type: "http", Scheme: "basic"},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:    api,
		mux:    mux,
		opts:   opts,
		logger: logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	if opts.AuthUser != "" && opts.AuthPass != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUser, opts.AuthPass))
	}

	mux.Handle("GET /metrics", promhttp.Handler())

	server.registerRoutes()
	server.registerLightRoutes()
	server.registerEventRoutes()
	server.registerLogRoutes()
	server.registerUpdateRoutes()

	return server
}

// withAuth marks an operation as requiring basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{{"basicAuth": {}}}
}

// basicAuthMiddleware enforces HTTP basic authentication. Operations
// with an empty security list (health, docs) skip it; SSE clients may
// pass credentials via the auth query parameter instead of a header.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		var credentials string
		if authHeader := ctx.Header("Authorization"); authHeader != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(authHeader, prefix) {
				s.unauthorized(ctx, "Invalid authentication type")
				return
			}
			decoded, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format")
				return
			}
			credentials = string(decoded)
		} else if queryAuth := ctx.Query("auth"); queryAuth != "" {
			decoded, err := base64.StdEncoding.DecodeString(queryAuth)
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format")
				return
			}
			credentials = string(decoded)
		}

		if credentials == "" {
			s.unauthorized(ctx, "Authentication required")
			return
		}

		parts := strings.SplitN(credentials, ":", 2)
		if len(parts) != 2 || parts[0] != username || parts[1] != password {
			s.unauthorized(ctx, "Invalid credentials")
			return
		}

		next(ctx)
	}
}

func (s *Server) unauthorized(ctx huma.Context, message string) {
	ctx.SetHeader("WWW-Authenticate", `Basic realm="busylightd API"`)
	huma.WriteErr(s.api, ctx, http.StatusUnauthorized, message)
}

// HealthData is the health check payload.
type HealthData struct {
	Status string       `json:"status" example:"ok" doc:"Service status"`
	Lights int          `json:"lights" doc:"Number of open lights"`
	Build  version.Info `json:"build" doc:"Build identity"`
}

// HealthResponse wraps HealthData for Huma.
type HealthResponse struct {
	Body HealthData
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{}, // no auth
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{
			Body: HealthData{
				Status: "ok",
				Lights: len(s.opts.Controller.List()),
				Build:  version.Get(),
			},
		}, nil
	})
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down immediately.
func (s *Server) Stop() error {
	s.logger.Info("stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// GetAPI returns the Huma API instance, for tests.
func (s *Server) GetAPI() huma.API {
	return s.api
}
