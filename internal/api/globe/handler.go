package globe

import (
	"context"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-globe/internal/api"
	engine "github.com/joeblew999/plat-globe/internal/globe"
	"github.com/joeblew999/plat-globe/internal/humastar"
	"github.com/joeblew999/plat-globe/internal/metrics"
	"github.com/joeblew999/plat-globe/internal/service"
	"github.com/joeblew999/plat-globe/internal/templates"
)

// Element ids patched on the page.
const (
	DropdownSelector     = "#dropdown"
	PointDetailSelector  = "#point-detail"
	FlightDetailSelector = "#flight-detail"
)

// Handler serves the globe stream and its input events.
type Handler struct {
	humastar.Handler
	ctrl *engine.Controller
}

func NewHandler(ctrl *engine.Controller, renderer *templates.Renderer) *Handler {
	return &Handler{
		Handler: humastar.Handler{Renderer: renderer},
		ctrl:    ctrl,
	}
}

type PointInput struct {
	Datastar bool   `header:"Datastar-Request"`
	Category string `path:"category" enum:"airport,volcano" doc:"Point kind"`
	ID       int    `path:"id" doc:"Entity identifier" example:"507"`
}

type ArcInput struct {
	Datastar bool `header:"Datastar-Request"`
	Index    int  `path:"index" doc:"Flight path identifier"`
}

type DetailInput struct {
	Which string `path:"which" enum:"point,flight" doc:"Detail panel"`
}

type VolcanoInput struct {
	Datastar bool `header:"Datastar-Request"`
	ID       int  `path:"id" doc:"Volcano identifier"`
}

func (h *Handler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("globe")
	huma.Get(api, "/api/v1/globe/stream", h.Events, tags)
	huma.Post(api, "/api/v1/globe/search", h.Search, tags)
	huma.Post(api, "/api/v1/globe/pick", h.Pick, tags)
	huma.Post(api, "/api/v1/globe/points/{category}/{id}/click", h.PointClick, tags)
	huma.Post(api, "/api/v1/globe/arcs/{index}/click", h.ArcClick, tags)
	huma.Post(api, "/api/v1/globe/detail/{which}/close", h.Close, tags)
	huma.Post(api, "/api/v1/globe/reset", h.Reset, tags)
	huma.Post(api, "/api/v1/globe/volcanoes/{id}/pulse", h.TogglePulse, tags)
}

// Events sends the current frame, then patches for every engine change until
// the client goes away.
func (h *Handler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			bus := h.ctrl.Engine().Bus()
			ch := bus.Subscribe()
			defer bus.Unsubscribe(ch)

			metrics.StreamClients.Inc()
			defer metrics.StreamClients.Dec()

			h.sendFrame(sse)
			done := humaCtx.Context().Done()
			for {
				select {
				case <-done:
					return
				case ev := <-ch:
					switch ev.Resource {
					case service.ResourceTick:
						sse.Signals(map[string]any{"radii": h.radii(ev.Tick)})
					case service.ResourceCamera:
						sse.Signals(map[string]any{"camera": ev.Camera})
					default:
						h.sendFrame(sse)
					}
				}
			}
		},
	}, nil
}

// Search applies the bound query signal.
func (h *Handler) Search(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	h.ctrl.OnSearchInput(signals.String("query"))
	return h.Stream(h.patchPanels), nil
}

// Pick handles a dropdown choice carried in the airportid signal.
func (h *Handler) Pick(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	if !signals.Has("airportid") {
		return nil, huma.Error400BadRequest("airportid signal required")
	}
	if err := h.ctrl.OnDropdownPick(signals.Int("airportid")); err != nil {
		return h.fail(input.Datastar, err)
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchPanels(sse)
		sse.Signals(map[string]any{"query": h.ctrl.Engine().Snapshot().Search.Query})
	}), nil
}

func (h *Handler) PointClick(ctx context.Context, input *PointInput) (*huma.StreamResponse, error) {
	cat, err := service.ParseCategory(input.Category)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.ctrl.OnPointClick(cat, input.ID); err != nil {
		return h.fail(input.Datastar, err)
	}
	return h.Stream(h.patchPanels), nil
}

func (h *Handler) ArcClick(ctx context.Context, input *ArcInput) (*huma.StreamResponse, error) {
	if err := h.ctrl.OnArcClick(input.Index); err != nil {
		return h.fail(input.Datastar, err)
	}
	return h.Stream(h.patchPanels), nil
}

func (h *Handler) Close(ctx context.Context, input *DetailInput) (*huma.StreamResponse, error) {
	slot, err := engine.ParseDetailSlot(input.Which)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	h.ctrl.OnClose(slot)
	return h.Stream(h.patchPanels), nil
}

func (h *Handler) Reset(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	h.ctrl.OnEscape()
	return h.Stream(func(sse humastar.SSE) {
		h.patchPanels(sse)
		sse.Signals(map[string]any{"query": ""})
	}), nil
}

func (h *Handler) TogglePulse(ctx context.Context, input *VolcanoInput) (*huma.StreamResponse, error) {
	on, err := h.ctrl.OnTogglePulse(input.ID)
	if err != nil {
		return h.fail(input.Datastar, err)
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchPanels(sse)
		sse.Signals(map[string]any{"pulsing": map[string]bool{strconv.Itoa(input.ID): on}})
	}), nil
}

// fail reports an engine error. Datastar requests get an error signal the
// page can show; other clients get the mapped HTTP error.
func (h *Handler) fail(datastar bool, err error) (*huma.StreamResponse, error) {
	if !datastar {
		return nil, api.EngineError(err)
	}
	return h.Stream(func(sse humastar.SSE) {
		sse.Error(err.Error())
	}), nil
}

func (h *Handler) sendFrame(sse humastar.SSE) {
	frame := engine.Project(h.ctrl.Engine().Snapshot())
	metrics.VisiblePoints.Set(float64(len(frame.Points)))

	sse.Signals(map[string]any{"frame": frame})
	h.patchFrame(sse, frame)
}

// patchPanels answers a successful input, clearing any earlier error.
func (h *Handler) patchPanels(sse humastar.SSE) {
	h.patchFrame(sse, engine.Project(h.ctrl.Engine().Snapshot()))
	sse.Signals(map[string]any{"error": ""})
}

// patchFrame renders the dropdown and both detail panels of frame.
func (h *Handler) patchFrame(sse humastar.SSE, frame engine.Frame) {
	sse.Patch(h.Render("dropdown", map[string]any{
		"Show":     frame.ShowDropdown,
		"Airports": frame.Dropdown,
	}), DropdownSelector)

	point := ""
	if p := frame.Selection.Point; p != nil {
		switch {
		case p.Airport != nil:
			point = h.Render("airport-detail", p.Airport)
		case p.Volcano != nil:
			point = h.Render("volcano-detail", h.currentVolcano(*p.Volcano))
		}
	}
	sse.Patch(point, PointDetailSelector)

	flight := ""
	if f := frame.Selection.Flight; f != nil {
		flight = h.Render("flight-detail", f)
	}
	sse.Patch(flight, FlightDetailSelector)
}

// currentVolcano refreshes the pulsing flag of a selected volcano, which may
// have been toggled since it was selected.
func (h *Handler) currentVolcano(v service.Volcano) service.Volcano {
	if cur, ok := h.ctrl.Engine().Store().Volcano(v.ID); ok {
		v.Pulsing = cur.Pulsing
	}
	return v
}

// radii maps each pulsing volcano to its radius at tick.
func (h *Handler) radii(tick uint64) map[string]float64 {
	out := make(map[string]float64)
	for _, v := range h.ctrl.Engine().Store().Volcanoes() {
		if v.Pulsing {
			out[strconv.Itoa(v.ID)] = engine.Radius(v, tick)
		}
	}
	return out
}
