package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/busylightd/internal/events"
)

// registerEventRoutes streams light plug/unplug/failure events over
// SSE. Each connected client gets its own bus subscription for its
// connection lifetime.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "stream-events",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Event stream",
		Description: "Server-sent events for light plug, unplug and failure",
		Tags:        []string{"events"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, map[string]any{
		"light_plugged":   events.LightPluggedEvent{},
		"light_unplugged": events.LightUnpluggedEvent{},
		"light_failed":    events.LightFailedEvent{},
	}, func(ctx context.Context, input *struct{}, send sse.Sender) {
		ch := make(chan events.Event, 16)
		forward := func(e events.Event) {
			select {
			case ch <- e:
			default:
				// A stalled client drops events rather than the bus.
			}
		}

		unsubs := []func(){
			s.opts.EventBus.Subscribe(func(e events.LightPluggedEvent) { forward(e) }),
			s.opts.EventBus.Subscribe(func(e events.LightUnpluggedEvent) { forward(e) }),
			s.opts.EventBus.Subscribe(func(e events.LightFailedEvent) { forward(e) }),
		}
		defer func() {
			for _, unsub := range unsubs {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case e := <-ch:
				if err := send.Data(e); err != nil {
					return
				}
			}
		}
	})
}
