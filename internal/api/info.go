package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-globe/internal/globe"
	"github.com/joeblew999/plat-globe/internal/service"
)

type InfoHandler struct {
	engine *globe.Engine
	source string
}

func NewInfoHandler(engine *globe.Engine, source string) *InfoHandler {
	return &InfoHandler{engine: engine, source: source}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type CategoryInfo struct {
	Loaded bool `json:"loaded" doc:"Whether the category was ingested"`
	Count  int  `json:"count" doc:"Entities held"`
}

type InfoBody struct {
	Name       string                  `json:"name" doc:"Service name"`
	Version    string                  `json:"version" doc:"Service version"`
	Source     string                  `json:"source" doc:"Data source kind" enum:"http,duckdb,static"`
	Categories map[string]CategoryInfo `json:"categories" doc:"Ingestion state per category"`
	Features   []string                `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	store := h.engine.Store()
	cats := map[string]CategoryInfo{
		string(service.CategoryAirport): {store.Loaded(service.CategoryAirport), len(store.Airports())},
		string(service.CategoryVolcano): {store.Loaded(service.CategoryVolcano), len(store.Volcanoes())},
		string(service.CategoryAirline): {store.Loaded(service.CategoryAirline), len(store.Airlines())},
		string(service.CategoryRoute):   {store.Loaded(service.CategoryRoute), len(store.Routes())},
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:       "plat-globe",
		Version:    Version,
		Source:     h.source,
		Categories: cats,
		Features:   []string{"search", "selection", "pulse", "geojson", "sse"},
	}}, nil
}
