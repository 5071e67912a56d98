package configure

import "github.com/BurntSushi/xgb/xproto"

// AsyncServerWindow sends configure requests without waiting for replies.
type AsyncServerWindow interface {
	RequestConfigureOnFrame(changes Changes, mask Mask)
	RequestConfigureOnWrapper(changes Changes, mask Mask)
	RequestConfigureOnClient(changes Changes, mask Mask)
	// HasCustomShape reports whether the client has a non-rectangular shape.
	HasCustomShape() bool
}

// SyncServerWindow reads window state from the server. Callers must flush
// pending requests first; Buffer does this for them.
type SyncServerWindow interface {
	QueryAttributes(attrib *Attributes) bool
	QueryFrameAttributes(attrib *Attributes) bool
}

// Attributes is the subset of server-side window state exposed to callers.
type Attributes struct {
	X                int16
	Y                int16
	Width            uint16
	Height           uint16
	BorderWidth      uint16
	MapState         byte
	OverrideRedirect bool
	Class            uint16
	Visual           xproto.Visualid
}

// Viewable reports whether the window and all its ancestors are mapped.
func (a Attributes) Viewable() bool {
	return a.MapState == xproto.MapStateViewable
}
