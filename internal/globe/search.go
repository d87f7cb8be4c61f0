package globe

import (
	"strings"

	"github.com/joeblew999/plat-globe/internal/service"
)

// SearchResult is the outcome of filtering the store by a query.
type SearchResult struct {
	Query    string            `json:"query" doc:"Query the result was computed for"`
	Airports []service.Airport `json:"airports" doc:"Visible airports"`
	Airline  *service.Airline  `json:"airline,omitempty" doc:"First airline whose name matches the query"`
	Routes   []service.Route   `json:"routes" doc:"Routes operated by the matched airline"`
}

// ShowDropdown reports whether the match list should be offered.
func (r SearchResult) ShowDropdown() bool {
	return r.Query != "" && len(r.Airports) > 0
}

// Filter derives the visible airports and the matched airline for query.
// An empty query shows every airport and matches no airline. Airline
// matching takes the first match in store order, not the best one.
func Filter(query string, airports []service.Airport, airlines []service.Airline, routes []service.Route) SearchResult {
	if query == "" {
		return SearchResult{Airports: airports, Routes: []service.Route{}}
	}

	q := strings.ToLower(query)
	res := SearchResult{Query: query, Airports: []service.Airport{}, Routes: []service.Route{}}
	for _, a := range airports {
		if containsFold(a.Name, q) || containsFold(a.Code, q) || containsFold(a.City, q) {
			res.Airports = append(res.Airports, a)
		}
	}

	for i := range airlines {
		if containsFold(airlines[i].Name, q) {
			al := airlines[i]
			res.Airline = &al
			break
		}
	}
	if res.Airline != nil {
		for _, r := range routes {
			if r.AirlineID == res.Airline.ID {
				res.Routes = append(res.Routes, r)
			}
		}
	}
	return res
}

// containsFold reports whether s contains the lowercased needle.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
