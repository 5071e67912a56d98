package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/configbuf/internal/configure"
)

// ServerWindow sends configure requests for a client/wrapper/frame triple and
// answers attribute queries for it.
type ServerWindow struct {
	conn    *Connection
	client  xproto.Window
	wrapper xproto.Window
	frame   xproto.Window
	logger  *slog.Logger

	shapeKnown bool
	shaped     bool
}

var (
	_ configure.AsyncServerWindow = (*ServerWindow)(nil)
	_ configure.SyncServerWindow  = (*ServerWindow)(nil)
)

// NewServerWindow wraps the three windows of one managed window.
func NewServerWindow(conn *Connection, client, wrapper, frame xproto.Window, logger *slog.Logger) *ServerWindow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ServerWindow{
		conn:    conn,
		client:  client,
		wrapper: wrapper,
		frame:   frame,
		logger:  logger,
	}
}

// Client returns the client window ID.
func (s *ServerWindow) Client() xproto.Window { return s.client }

// Wrapper returns the wrapper window ID.
func (s *ServerWindow) Wrapper() xproto.Window { return s.wrapper }

// Frame returns the frame window ID.
func (s *ServerWindow) Frame() xproto.Window { return s.frame }

func (s *ServerWindow) RequestConfigureOnFrame(changes configure.Changes, mask configure.Mask) {
	s.configure(s.frame, "frame", changes, mask)
}

func (s *ServerWindow) RequestConfigureOnWrapper(changes configure.Changes, mask configure.Mask) {
	s.configure(s.wrapper, "wrapper", changes, mask)
}

func (s *ServerWindow) RequestConfigureOnClient(changes configure.Changes, mask configure.Mask) {
	s.configure(s.client, "client", changes, mask)
}

// configure issues an unchecked ConfigureWindow; errors surface as events
// on the connection.
func (s *ServerWindow) configure(win xproto.Window, role string, changes configure.Changes, mask configure.Mask) {
	if win == 0 || mask == 0 {
		return
	}
	s.logger.Debug("configure window", "role", role, "window", win, "mask", mask)
	xproto.ConfigureWindow(s.conn.Conn(), win, uint16(mask), changes.Values(mask))
}

// HasCustomShape reports whether the client's bounding shape is anything
// other than its plain rectangle. The answer is cached until ShapeChanged.
func (s *ServerWindow) HasCustomShape() bool {
	if !s.conn.HasShape {
		return false
	}
	if s.shapeKnown {
		return s.shaped
	}

	extents, err := shape.QueryExtents(s.conn.Conn(), s.client).Reply()
	if err != nil {
		s.logger.Warn("shape query failed", "window", s.client, "error", err)
		return false
	}
	shaped := false
	if extents.BoundingShaped {
		geom, err := xproto.GetGeometry(s.conn.Conn(), xproto.Drawable(s.client)).Reply()
		if err != nil {
			s.logger.Warn("geometry query failed", "window", s.client, "error", err)
			return false
		}
		rects, err := shape.GetRectangles(s.conn.Conn(), s.client, shape.SkBounding).Reply()
		if err != nil {
			s.logger.Warn("shape rectangles query failed", "window", s.client, "error", err)
			return false
		}
		shaped = isCustomShape(rects.Rectangles, geom.Width, geom.Height, geom.BorderWidth)
	}

	s.shapeKnown, s.shaped = true, shaped
	return shaped
}

// ShapeChanged drops the cached shape answer, typically on ShapeNotify.
func (s *ServerWindow) ShapeChanged() {
	s.shapeKnown = false
}

// SelectShapeInput asks the server for ShapeNotify events on the client.
func (s *ServerWindow) SelectShapeInput() {
	if s.conn.HasShape {
		shape.SelectInput(s.conn.Conn(), s.client, true)
	}
}

func (s *ServerWindow) QueryAttributes(attrib *configure.Attributes) bool {
	return s.query(s.client, attrib)
}

func (s *ServerWindow) QueryFrameAttributes(attrib *configure.Attributes) bool {
	return s.query(s.frame, attrib)
}

func (s *ServerWindow) query(win xproto.Window, attrib *configure.Attributes) bool {
	conn := s.conn.Conn()
	attrCookie := xproto.GetWindowAttributes(conn, win)
	geomCookie := xproto.GetGeometry(conn, xproto.Drawable(win))

	attrs, err := attrCookie.Reply()
	if err != nil {
		s.logger.Warn("window attributes query failed", "window", win, "error", err)
		return false
	}
	geom, err := geomCookie.Reply()
	if err != nil {
		s.logger.Warn("geometry query failed", "window", win, "error", err)
		return false
	}

	*attrib = configure.Attributes{
		X:                geom.X,
		Y:                geom.Y,
		Width:            geom.Width,
		Height:           geom.Height,
		BorderWidth:      geom.BorderWidth,
		MapState:         attrs.MapState,
		OverrideRedirect: attrs.OverrideRedirect,
		Class:            attrs.Class,
		Visual:           attrs.Visual,
	}
	return true
}

// isCustomShape reports whether rects differ from the single rectangle an
// unshaped window of the given size would have. Bounding rectangles are
// relative to the window origin and include the border.
func isCustomShape(rects []xproto.Rectangle, width, height, border uint16) bool {
	if len(rects) != 1 {
		return true
	}
	r := rects[0]
	bw := int16(border)
	return r.X != -bw || r.Y != -bw ||
		r.Width != width+2*border || r.Height != height+2*border
}
