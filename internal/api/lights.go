package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/effect"
)

// LightInfo is one light in list output.
type LightInfo struct {
	Index     int    `json:"index" doc:"0-based snapshot index"`
	Name      string `json:"name" example:"Busylight Alpha" doc:"Driver-chosen product name"`
	VendorID  string `json:"vendor_id" example:"04d8" doc:"USB vendor id, hex"`
	ProductID string `json:"product_id" example:"f848" doc:"USB product id, hex"`
	Serial    string `json:"serial,omitempty" doc:"Serial number when available"`
	Path      string `json:"path" doc:"OS device path"`
	Acquired  bool   `json:"is_acquired" doc:"Whether the daemon holds the device"`
	State     string `json:"state" example:"solid" doc:"Last commanded state"`
	LastColor string `json:"last_color" example:"#ff0000" doc:"Last commanded color"`
}

func lightInfoFromRecord(rec controller.LightRecord) LightInfo {
	return LightInfo{
		Index:     rec.Index,
		Name:      rec.Name,
		VendorID:  fmt.Sprintf("%04x", rec.VendorID),
		ProductID: fmt.Sprintf("%04x", rec.ProductID),
		Serial:    rec.Serial,
		Path:      rec.Path,
		Acquired:  rec.Acquired,
		State:     rec.State,
		LastColor: rec.LastColor.String(),
	}
}

// Selector narrows an operation to a subset of lights. Empty selects
// all.
type Selector struct {
	Index   *int   `json:"index,omitempty" doc:"Select a single light by 0-based index"`
	Name    string `json:"name,omitempty" doc:"Select lights by exact name"`
	Pattern string `json:"pattern,omitempty" doc:"Select lights by name regexp"`
}

func (s *Server) resolve(sel Selector) (controller.Selection, error) {
	ctrl := s.opts.Controller
	switch {
	case sel.Index != nil:
		return ctrl.ByIndex(*sel.Index), nil
	case sel.Name != "":
		return ctrl.ByName(sel.Name, 0), nil
	case sel.Pattern != "":
		selection, err := ctrl.ByPattern(sel.Pattern)
		if err != nil {
			return selection, huma.Error400BadRequest("invalid pattern", err)
		}
		return selection, nil
	default:
		return ctrl.All(), nil
	}
}

func (s *Server) dim(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	if s.opts.DefaultDim > 0 {
		return s.opts.DefaultDim
	}
	return 1.0
}

func parseColor(value string) (color.RGB, error) {
	c, err := color.Parse(value)
	if err != nil {
		return color.RGB{}, huma.Error400BadRequest("invalid color", err)
	}
	return c, nil
}

// LightsResponse is the list payload.
type LightsResponse struct {
	Body struct {
		Lights []LightInfo `json:"lights" doc:"Open lights in snapshot order"`
	}
}

// LightResponse is a single light payload.
type LightResponse struct {
	Body LightInfo
}

// OnRequest turns lights on with a steady color.
type OnRequest struct {
	Body struct {
		Selector
		Color     string  `json:"color" example:"#ff0000" doc:"Color as #RRGGBB or r,g,b"`
		LED       int     `json:"led,omitempty" doc:"LED index, 0 means all"`
		Dim       float64 `json:"dim,omitempty" example:"1.0" doc:"Brightness factor (0,1]"`
		TimeoutMs int     `json:"timeout_ms,omitempty" doc:"Turn back off after this many milliseconds"`
	}
}

// OffRequest turns lights off.
type OffRequest struct {
	Body struct {
		Selector
		LED int `json:"led,omitempty" doc:"LED index, 0 means all"`
	}
}

// BlinkRequest blinks lights.
type BlinkRequest struct {
	Body struct {
		Selector
		Color string  `json:"color" example:"#0000ff" doc:"Color as #RRGGBB or r,g,b"`
		Count int     `json:"count,omitempty" doc:"Blink pairs; 0 blinks until stopped"`
		Speed string  `json:"speed,omitempty" example:"slow" doc:"slow, medium or fast"`
		LED   int     `json:"led,omitempty" doc:"LED index, 0 means all"`
		Dim   float64 `json:"dim,omitempty" doc:"Brightness factor (0,1]"`
	}
}

// EffectRequest applies a named effect.
type EffectRequest struct {
	Body struct {
		Selector
		Effect  string  `json:"effect" example:"spectrum" doc:"steady, blink, spectrum, gradient or fli"`
		Color   string  `json:"color,omitempty" doc:"Primary color, where the effect takes one"`
		ColorB  string  `json:"color_b,omitempty" doc:"Secondary color for fli"`
		Count   int     `json:"count,omitempty" doc:"Cycles; 0 repeats until stopped"`
		Speed   string  `json:"speed,omitempty" doc:"slow, medium or fast"`
		Step    int     `json:"step,omitempty" doc:"Gradient step size"`
		LED     int     `json:"led,omitempty" doc:"LED index, 0 means all"`
		Dim     float64 `json:"dim,omitempty" doc:"Brightness factor (0,1]"`
	}
}

// OperationResponse reports how many lights an operation touched.
type OperationResponse struct {
	Body struct {
		Matched int `json:"matched" doc:"Number of lights the selection matched"`
	}
}

func operationResponse(n int) *OperationResponse {
	resp := &OperationResponse{}
	resp.Body.Matched = n
	return resp
}

func speedFromString(s string) effect.Speed {
	switch s {
	case "medium":
		return effect.SpeedMedium
	case "fast":
		return effect.SpeedFast
	default:
		return effect.SpeedSlow
	}
}

func (s *Server) registerLightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-lights",
		Method:      http.MethodGet,
		Path:        "/api/lights",
		Summary:     "List lights",
		Description: "List all open lights in snapshot order",
		Tags:        []string{"lights"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LightsResponse, error) {
		resp := &LightsResponse{}
		resp.Body.Lights = []LightInfo{}
		for _, rec := range s.opts.Controller.List() {
			resp.Body.Lights = append(resp.Body.Lights, lightInfoFromRecord(rec))
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-light",
		Method:      http.MethodGet,
		Path:        "/api/lights/{index}",
		Summary:     "Get light",
		Description: "Get a single light by snapshot index",
		Tags:        []string{"lights"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Index int `path:"index" doc:"0-based snapshot index"`
	}) (*LightResponse, error) {
		for _, rec := range s.opts.Controller.List() {
			if rec.Index == input.Index {
				return &LightResponse{Body: lightInfoFromRecord(rec)}, nil
			}
		}
		return nil, huma.Error404NotFound(fmt.Sprintf("no light at index %d", input.Index))
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "lights-on",
		Method:      http.MethodPost,
		Path:        "/api/lights/on",
		Summary:     "Turn on",
		Description: "Apply a steady color to the selected lights",
		Tags:        []string{"lights"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *OnRequest) (*OperationResponse, error) {
		c, err := parseColor(input.Body.Color)
		if err != nil {
			return nil, err
		}
		sel, err := s.resolve(input.Body.Selector)
		if err != nil {
			return nil, err
		}
		sel.TurnOn(c, input.Body.LED, s.dim(input.Body.Dim), time.Duration(input.Body.TimeoutMs)*time.Millisecond)
		return operationResponse(sel.Len()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "lights-off",
		Method:      http.MethodPost,
		Path:        "/api/lights/off",
		Summary:     "Turn off",
		Description: "Stop effects and drive the selected lights dark",
		Tags:        []string{"lights"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *OffRequest) (*OperationResponse, error) {
		sel, err := s.resolve(input.Body.Selector)
		if err != nil {
			return nil, err
		}
		sel.TurnOff(input.Body.LED)
		return operationResponse(sel.Len()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "lights-blink",
		Method:      http.MethodPost,
		Path:        "/api/lights/blink",
		Summary:     "Blink",
		Description: "Blink the selected lights",
		Tags:        []string{"lights"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *BlinkRequest) (*OperationResponse, error) {
		c, err := parseColor(input.Body.Color)
		if err != nil {
			return nil, err
		}
		sel, err := s.resolve(input.Body.Selector)
		if err != nil {
			return nil, err
		}
		sel.Blink(c, input.Body.Count, speedFromString(input.Body.Speed), input.Body.LED, s.dim(input.Body.Dim))
		return operationResponse(sel.Len()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "lights-effect",
		Method:      http.MethodPost,
		Path:        "/api/lights/effect",
		Summary:     "Apply effect",
		Description: "Apply a named effect to the selected lights",
		Tags:        []string{"lights"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *EffectRequest) (*OperationResponse, error) {
		eff, err := s.buildEffect(input)
		if err != nil {
			return nil, err
		}
		sel, err := s.resolve(input.Body.Selector)
		if err != nil {
			return nil, err
		}
		sel.ApplyEffect(eff, input.Body.LED, s.dim(input.Body.Dim))
		return operationResponse(sel.Len()), nil
	})
}

func (s *Server) buildEffect(input *EffectRequest) (*effect.Effect, error) {
	body := input.Body
	speed := speedFromString(body.Speed)

	needColor := func() (color.RGB, error) {
		if body.Color == "" {
			return color.RGB{}, huma.Error400BadRequest(fmt.Sprintf("effect %q needs a color", body.Effect))
		}
		return parseColor(body.Color)
	}

	switch body.Effect {
	case "steady":
		c, err := needColor()
		if err != nil {
			return nil, err
		}
		return effect.Steady(c), nil
	case "blink":
		c, err := needColor()
		if err != nil {
			return nil, err
		}
		return effect.Blink(c, color.Black, body.Count, speed), nil
	case "spectrum":
		return effect.Spectrum(effect.SpectrumOptions{}, body.Count), nil
	case "gradient":
		c, err := needColor()
		if err != nil {
			return nil, err
		}
		return effect.Gradient(c, body.Step, body.Count), nil
	case "fli":
		a, err := needColor()
		if err != nil {
			return nil, err
		}
		b := color.RGB{B: 255}
		if body.ColorB != "" {
			if b, err = parseColor(body.ColorB); err != nil {
				return nil, err
			}
		}
		return effect.Fli(a, b, body.Count, speed), nil
	default:
		return nil, huma.Error400BadRequest(fmt.Sprintf("unknown effect %q", body.Effect))
	}
}
