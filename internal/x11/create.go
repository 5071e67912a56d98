package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Triple holds the windows backing one decorated window.
type Triple struct {
	Frame   *xwindow.Window
	Wrapper *xwindow.Window
	Client  *xwindow.Window

	destroyed bool
}

// TripleSpec describes the initial layout of a Triple in root coordinates.
type TripleSpec struct {
	Title        string
	X, Y         int
	Width        int // client width
	Height       int // client height
	Left, Top    int // decoration insets
	Right        int
	Bottom       int
	FrameColor   uint32
	ClientColor  uint32
	ClientBorder int
}

// CreateTriple creates frame, wrapper and client windows nested in that
// order, the way a reparenting window manager decorates a client.
func (c *Connection) CreateTriple(opts TripleSpec) (*Triple, error) {
	frame, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate frame window: %w", err)
	}
	bw := 2 * opts.ClientBorder
	frameW := opts.Width + bw + opts.Left + opts.Right
	frameH := opts.Height + bw + opts.Top + opts.Bottom
	if err := frame.CreateChecked(c.Root, opts.X, opts.Y, frameW, frameH,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.FrameColor, xproto.EventMaskStructureNotify); err != nil {
		return nil, fmt.Errorf("failed to create frame window: %w", err)
	}

	wrapper, err := xwindow.Generate(c.XUtil)
	if err != nil {
		frame.Destroy()
		return nil, fmt.Errorf("failed to allocate wrapper window: %w", err)
	}
	if err := wrapper.CreateChecked(frame.Id, opts.Left, opts.Top, opts.Width+bw, opts.Height+bw,
		xproto.CwEventMask, xproto.EventMaskStructureNotify); err != nil {
		frame.Destroy()
		return nil, fmt.Errorf("failed to create wrapper window: %w", err)
	}

	client, err := xwindow.Generate(c.XUtil)
	if err != nil {
		frame.Destroy()
		return nil, fmt.Errorf("failed to allocate client window: %w", err)
	}
	if err := client.CreateChecked(wrapper.Id, 0, 0, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		opts.ClientColor, xproto.EventMaskStructureNotify); err != nil {
		frame.Destroy()
		return nil, fmt.Errorf("failed to create client window: %w", err)
	}
	if opts.ClientBorder > 0 {
		xproto.ConfigureWindow(c.Conn(), client.Id, xproto.ConfigWindowBorderWidth,
			[]uint32{uint32(opts.ClientBorder)})
	}

	if opts.Title != "" {
		if err := ewmh.WmNameSet(c.XUtil, frame.Id, opts.Title); err != nil {
			frame.Destroy()
			return nil, fmt.Errorf("failed to set frame title: %w", err)
		}
	}

	client.Map()
	wrapper.Map()
	frame.Map()

	return &Triple{Frame: frame, Wrapper: wrapper, Client: client}, nil
}

// Destroy removes the frame and, with it, the nested windows. Calling it
// again does nothing.
func (t *Triple) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.Frame.Destroy()
}
