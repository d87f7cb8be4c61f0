package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-globe/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/frame>; rel="frame"`,
		`</api/v1/airports>; rel="airports"`,
		`</api/v1/search>; rel="search"`,
		`</openapi.json>; rel="service-desc"`,
		`</docs>; rel="service-doc"`,
	},
	"/api/v1/info": {
		`</health>; rel="up"`,
		`</api/v1/frame>; rel="frame"`,
	},
	"/api/v1/frame": {
		`</health>; rel="up"`,
		`</api/v1/frame/geojson>; rel="alternate"`,
		`</api/v1/selection>; rel="selection"`,
	},
	"/api/v1/frame/geojson": {
		`</api/v1/frame>; rel="alternate"`,
	},
	"/api/v1/airports": {
		`</health>; rel="up"`,
		`</api/v1/search>; rel="search"`,
	},
	"/api/v1/search": {
		`</api/v1/airports>; rel="collection"`,
	},
	"/api/v1/selection": {
		`</api/v1/frame>; rel="up"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if p, ok := v.(humastar.Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		return v, nil
	}
}
