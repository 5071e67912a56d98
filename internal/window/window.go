// Package window turns decided client geometry for a decorated window into
// configure requests on its frame, wrapper and client.
package window

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/configbuf/internal/configure"
)

// ErrNoServerState is returned when an attribute query fails.
var ErrNoServerState = errors.New("window attributes unavailable")

// Rect describes a rectangle in root coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Extents are the decoration insets between frame and client.
type Extents struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Server is both ports of the windows behind one decorated window.
type Server interface {
	configure.AsyncServerWindow
	configure.SyncServerWindow
}

// Window owns the configure buffer for one decorated window.
type Window struct {
	buffer  *configure.Buffer
	extents Extents

	geometry Rect
	border   int
	placed   bool

	// Last geometry handed to the buffer per object.
	frame   Rect
	wrapper Rect
	client  Rect
}

// New creates a Window whose requests go through server.
func New(server Server, extents Extents, opts configure.Options) *Window {
	return &Window{
		buffer:  configure.NewBuffer(server, server, opts),
		extents: extents,
	}
}

// Buffer exposes the underlying configure buffer.
func (w *Window) Buffer() *configure.Buffer {
	return w.buffer
}

// Geometry returns the last decided client rectangle.
func (w *Window) Geometry() Rect {
	return w.geometry
}

// Extents returns the current decoration insets.
func (w *Window) Extents() Extents {
	return w.extents
}

// Freeze holds back geometry changes until the returned lock is released
// or closed. Stacking changes still go out immediately.
func (w *Window) Freeze() configure.Lock {
	return w.buffer.ObtainLock()
}

// SetGeometry moves and resizes the client area to r, pushing only the
// fields that changed on each object.
func (w *Window) SetGeometry(r Rect) error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("invalid client size %dx%d", r.Width, r.Height)
	}
	w.geometry = r
	w.place()
	return nil
}

// SetExtents changes the decoration insets and re-places frame and wrapper.
func (w *Window) SetExtents(e Extents) {
	w.extents = e
	if w.placed {
		w.place()
	}
}

// SetBorderWidth changes the client border width. The wrapper and frame
// grow by twice the width so the border is not clipped.
func (w *Window) SetBorderWidth(width int) {
	width = max(0, width)
	if width == w.border && w.placed {
		return
	}
	w.border = width
	lock := w.buffer.ObtainLock()
	defer lock.Close()
	w.buffer.PushClientRequest(configure.Changes{BorderWidth: clampU16(width)}, configure.MaskBorderWidth)
	if w.placed {
		w.place()
	}
}

// Restack places the frame relative to sibling, or relative to all siblings
// when sibling is zero. mode is an xproto.StackMode* value.
func (w *Window) Restack(sibling xproto.Window, mode byte) {
	mask := configure.MaskStackMode
	if sibling != 0 {
		mask |= configure.MaskSibling
	}
	w.buffer.PushFrameRequest(configure.Changes{Sibling: sibling, StackMode: mode}, mask)
}

// Raise puts the frame on top of its siblings.
func (w *Window) Raise() {
	w.Restack(0, xproto.StackModeAbove)
}

// Lower puts the frame below its siblings.
func (w *Window) Lower() {
	w.Restack(0, xproto.StackModeBelow)
}

// Flush sends all pending requests now.
func (w *Window) Flush() {
	w.buffer.Flush()
}

// ServerGeometry reads the client attributes from the server after
// flushing pending requests.
func (w *Window) ServerGeometry() (configure.Attributes, error) {
	var attrib configure.Attributes
	if !w.buffer.QueryAttributes(&attrib) {
		return attrib, fmt.Errorf("client: %w", ErrNoServerState)
	}
	return attrib, nil
}

// ServerFrameGeometry reads the frame attributes from the server after
// flushing pending requests.
func (w *Window) ServerFrameGeometry() (configure.Attributes, error) {
	var attrib configure.Attributes
	if !w.buffer.QueryFrameAttributes(&attrib) {
		return attrib, fmt.Errorf("frame: %w", ErrNoServerState)
	}
	return attrib, nil
}

// place derives the three object rectangles. r.X and r.Y locate the outer
// edge of the client border; r.Width and r.Height are the inner size.
func (w *Window) place() {
	e, r, bw := w.extents, w.geometry, 2*w.border

	frame := Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + bw + e.Left + e.Right,
		Height: r.Height + bw + e.Top + e.Bottom,
	}
	wrapper := Rect{X: e.Left, Y: e.Top, Width: r.Width + bw, Height: r.Height + bw}
	client := Rect{Width: r.Width, Height: r.Height}

	w.push(w.buffer.PushFrameRequest, &w.frame, frame)
	w.push(w.buffer.PushWrapperRequest, &w.wrapper, wrapper)
	w.push(w.buffer.PushClientRequest, &w.client, client)
	w.placed = true
}

func (w *Window) push(send func(configure.Changes, configure.Mask), last *Rect, next Rect) {
	mask := diff(*last, next)
	if !w.placed {
		mask = configure.MaskPosition | configure.MaskSize
	}
	*last = next
	if mask == 0 {
		return
	}
	send(configure.Changes{
		X:      clampI16(next.X),
		Y:      clampI16(next.Y),
		Width:  clampU16(next.Width),
		Height: clampU16(next.Height),
	}, mask)
}

func diff(a, b Rect) configure.Mask {
	var m configure.Mask
	if a.X != b.X {
		m |= configure.MaskX
	}
	if a.Y != b.Y {
		m |= configure.MaskY
	}
	if a.Width != b.Width {
		m |= configure.MaskWidth
	}
	if a.Height != b.Height {
		m |= configure.MaskHeight
	}
	return m
}

func clampI16(v int) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

func clampU16(v int) uint16 {
	return uint16(max(0, min(math.MaxUint16, v)))
}
