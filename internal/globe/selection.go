package globe

import (
	"fmt"

	"github.com/joeblew999/plat-globe/internal/service"
)

// DetailSlot addresses one of the two independent detail panels.
type DetailSlot string

const (
	SlotPoint  DetailSlot = "point"
	SlotFlight DetailSlot = "flight"
)

// ParseDetailSlot parses a slot name as used in URLs.
func ParseDetailSlot(s string) (DetailSlot, error) {
	switch d := DetailSlot(s); d {
	case SlotPoint, SlotFlight:
		return d, nil
	}
	return "", fmt.Errorf("unknown detail slot %q", s)
}

// PointSelection is the active airport or volcano. Exactly one of Airport
// and Volcano is set, matching Category.
type PointSelection struct {
	Category service.Category `json:"category" enum:"airport,volcano" doc:"Selected entity kind"`
	Airport  *service.Airport `json:"airport,omitempty" doc:"Selected airport"`
	Volcano  *service.Volcano `json:"volcano,omitempty" doc:"Selected volcano, enriched once its detail arrives"`
}

// ID returns the identifier of the selected entity.
func (p PointSelection) ID() int {
	if p.Airport != nil {
		return p.Airport.ID
	}
	if p.Volcano != nil {
		return p.Volcano.ID
	}
	return 0
}

// Selection holds the point detail and the flight detail. The two are
// independent; at most one point is ever selected.
type Selection struct {
	Point  *PointSelection     `json:"point,omitempty" doc:"Active point detail"`
	Flight *service.FlightPath `json:"flight,omitempty" doc:"Active flight detail"`
}

// Idle reports whether no point is selected.
func (s Selection) Idle() bool { return s.Point == nil }

// selector owns the selection and the token that tags detail fetches. The
// token changes whenever the point selection does, so a response tagged
// with an older token belongs to a superseded selection.
//
// Values reachable from sel are never mutated in place; updates swap in new
// pointers so snapshots can share them.
type selector struct {
	sel   Selection
	token uint64
}

func (s *selector) selectPoint(p PointSelection) uint64 {
	s.token++
	s.sel.Point = &p
	return s.token
}

func (s *selector) selectFlight(fp service.FlightPath) {
	s.sel.Flight = &fp
}

func (s *selector) close(slot DetailSlot) {
	switch slot {
	case SlotPoint:
		s.token++
		s.sel.Point = nil
	case SlotFlight:
		s.sel.Flight = nil
	}
}

func (s *selector) reset() {
	s.token++
	s.sel = Selection{}
}

func (s *selector) current(token uint64) bool {
	return token == s.token
}

// setPulsing mirrors a pulse toggle onto the selected volcano.
func (s *selector) setPulsing(id int, on bool) bool {
	p := s.sel.Point
	if p == nil || p.Volcano == nil || p.Volcano.ID != id {
		return false
	}
	next := *p
	v := *p.Volcano
	v.Pulsing = on
	next.Volcano = &v
	s.sel.Point = &next
	return true
}

// enrichVolcano overlays a detail record on the selected volcano.
func (s *selector) enrichVolcano(d service.Volcano) bool {
	p := s.sel.Point
	if p == nil || p.Volcano == nil || p.Volcano.ID != d.ID {
		return false
	}
	next := *p
	v := p.Volcano.WithDetail(d)
	next.Volcano = &v
	s.sel.Point = &next
	return true
}
