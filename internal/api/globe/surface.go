// Package globe contains the Datastar SSE render surface and the input
// handlers of the globe page.
package globe

import (
	"github.com/joeblew999/plat-globe/internal/service"
)

// Surface is the render surface seen by the controller. Camera commands are
// broadcast on the bus so every connected stream moves its camera.
type Surface struct {
	bus *service.EventBus
}

func NewSurface(bus *service.EventBus) *Surface {
	return &Surface{bus: bus}
}

func (s *Surface) PointOfView(cmd service.CameraCommand) {
	s.bus.Publish(service.Event{Resource: service.ResourceCamera, Action: "point-of-view", Camera: &cmd})
}
