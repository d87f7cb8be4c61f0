package globe

import (
	"fmt"

	"github.com/joeblew999/plat-globe/internal/service"
)

// RenderSurface is the camera handle of whatever draws the globe. Points and
// arcs reach it through projected frames; only camera moves are imperative.
type RenderSurface interface {
	PointOfView(cmd service.CameraCommand)
}

// Controller maps user input to engine transitions.
type Controller struct {
	engine  *Engine
	surface RenderSurface
}

// NewController wires input handling for engine to surface.
func NewController(engine *Engine, surface RenderSurface) *Controller {
	return &Controller{engine: engine, surface: surface}
}

// Engine returns the controlled engine.
func (c *Controller) Engine() *Engine { return c.engine }

// OnSearchInput handles a change of the search text.
func (c *Controller) OnSearchInput(q string) SearchResult {
	return c.engine.SetQuery(q)
}

// OnDropdownPick sets the query to the picked airport's name, closes the
// dropdown and flies the camera to it. It does not select the airport.
func (c *Controller) OnDropdownPick(airportID int) error {
	a, ok := c.engine.Store().Airport(airportID)
	if !ok {
		return fmt.Errorf("%w: airport %d", ErrUnknownEntity, airportID)
	}
	c.engine.SetQuery(a.Name)
	c.engine.DismissDropdown()
	c.surface.PointOfView(CameraTo(a.Lat, a.Lng))
	return nil
}

// OnPointClick selects an airport or volcano.
func (c *Controller) OnPointClick(cat service.Category, id int) error {
	return c.engine.SelectPoint(cat, id)
}

// OnArcClick selects a flight path.
func (c *Controller) OnArcClick(index int) error {
	return c.engine.SelectArc(index)
}

// OnClose closes one detail panel.
func (c *Controller) OnClose(slot DetailSlot) {
	c.engine.CloseDetail(slot)
}

// OnEscape resets the view.
func (c *Controller) OnEscape() {
	c.engine.Reset()
}

// OnTogglePulse flips a volcano's pulse.
func (c *Controller) OnTogglePulse(id int) (bool, error) {
	return c.engine.TogglePulse(id)
}
