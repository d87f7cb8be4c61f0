// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-globe/internal/globe"
	"github.com/joeblew999/plat-globe/internal/humastar"
	"github.com/joeblew999/plat-globe/internal/service"
)

// Version is reported by /health and /api/v1/info.
const Version = "1.0.0"

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type FrameOutput struct {
	Body globe.Frame
}

type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type PageInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit  int `query:"limit" minimum:"1" maximum:"1000" default:"50" doc:"Page size"`
}

type AirportsOutput struct {
	Body humastar.PageBody[service.Airport]
}

type SearchInput struct {
	Q string `query:"q" doc:"Case-insensitive substring of airport name, code or city; airline name" example:"lhr"`
}

type SearchBody struct {
	globe.SearchResult
	ShowDropdown bool `json:"showDropdown" doc:"Whether a match list would be offered"`
}

type SearchOutput struct {
	Body SearchBody
}

type SelectionOutput struct {
	Body globe.Selection
}

// APIHandler holds the REST handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	engine *globe.Engine
}

func NewAPIHandler(engine *globe.Engine) *APIHandler {
	return &APIHandler{engine: engine}
}

// RegisterRoutes registers every REST handler on api.
func RegisterRoutes(api huma.API, engine *globe.Engine) {
	huma.AutoRegister(api, NewAPIHandler(engine))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterFrame registers the projected frame routes.
func (h *APIHandler) RegisterFrame(api huma.API) {
	huma.Get(api, "/api/v1/frame", h.GetFrame, huma.OperationTags("frame"))
	huma.Get(api, "/api/v1/frame/geojson", h.GetFrameGeoJSON, huma.OperationTags("frame"))
}

// RegisterEntities registers store and search routes.
func (h *APIHandler) RegisterEntities(api huma.API) {
	huma.Get(api, "/api/v1/airports", h.GetAirports, huma.OperationTags("entities"))
	huma.Get(api, "/api/v1/search", h.GetSearch, huma.OperationTags("entities"))
	huma.Get(api, "/api/v1/selection", h.GetSelection, huma.OperationTags("frame"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetFrame(ctx context.Context, input *struct{}) (*FrameOutput, error) {
	return &FrameOutput{Body: globe.Project(h.engine.Snapshot())}, nil
}

func (h *APIHandler) GetFrameGeoJSON(ctx context.Context, input *struct{}) (*GeoJSONOutput, error) {
	b, err := globe.Project(h.engine.Snapshot()).GeoJSON().MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encoding geojson", err)
	}
	return &GeoJSONOutput{ContentType: "application/geo+json", Body: b}, nil
}

// GetAirports pages through the airports currently visible under the query.
func (h *APIHandler) GetAirports(ctx context.Context, input *PageInput) (*AirportsOutput, error) {
	s := h.engine.Snapshot()
	visible := s.Airports
	if s.Search.Query != "" {
		visible = s.Search.Airports
	}
	return &AirportsOutput{Body: humastar.Paginate(visible, input.Offset, input.Limit)}, nil
}

// GetSearch previews a query against the store without changing the engine.
func (h *APIHandler) GetSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	store := h.engine.Store()
	res := globe.Filter(input.Q, store.Airports(), store.Airlines(), store.Routes())
	return &SearchOutput{Body: SearchBody{SearchResult: res, ShowDropdown: res.ShowDropdown()}}, nil
}

func (h *APIHandler) GetSelection(ctx context.Context, input *struct{}) (*SelectionOutput, error) {
	return &SelectionOutput{Body: h.engine.Snapshot().Selection}, nil
}

// EngineError maps engine errors to HTTP errors.
func EngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, globe.ErrUnknownEntity), errors.Is(err, globe.ErrUnknownArc):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, globe.ErrUnknownCategory):
		return huma.Error400BadRequest(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
