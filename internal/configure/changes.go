// Package configure coalesces geometry and stacking requests for the three
// server-side objects behind a managed window (client, wrapper and frame)
// and decides when they are sent to the display server.
package configure

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// Mask selects which fields of a Changes value carry a pending value.
// The bits match the X protocol ConfigureWindow value mask.
type Mask uint16

const (
	MaskX           Mask = xproto.ConfigWindowX
	MaskY           Mask = xproto.ConfigWindowY
	MaskWidth       Mask = xproto.ConfigWindowWidth
	MaskHeight      Mask = xproto.ConfigWindowHeight
	MaskBorderWidth Mask = xproto.ConfigWindowBorderWidth
	MaskSibling     Mask = xproto.ConfigWindowSibling
	MaskStackMode   Mask = xproto.ConfigWindowStackMode

	MaskPosition Mask = MaskX | MaskY
	MaskSize     Mask = MaskWidth | MaskHeight
	MaskStacking Mask = MaskSibling | MaskStackMode
	MaskAll      Mask = MaskPosition | MaskSize | MaskBorderWidth | MaskStacking
)

var maskNames = []struct {
	bit  Mask
	name string
}{
	{MaskX, "x"},
	{MaskY, "y"},
	{MaskWidth, "width"},
	{MaskHeight, "height"},
	{MaskBorderWidth, "border_width"},
	{MaskSibling, "sibling"},
	{MaskStackMode, "stack_mode"},
}

// Has reports whether any bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other != 0
}

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, n := range maskNames {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Changes mirrors the configurable attributes of a window. A field is only
// meaningful when its bit is present in the accompanying Mask.
type Changes struct {
	X           int16
	Y           int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
	Sibling     xproto.Window
	StackMode   byte
}

// Values returns the ConfigureWindow value list for mask. The X protocol
// requires values in ascending bit order.
func (c Changes) Values(mask Mask) []uint32 {
	values := make([]uint32, 0, 7)
	if mask&MaskX != 0 {
		values = append(values, uint32(int32(c.X)))
	}
	if mask&MaskY != 0 {
		values = append(values, uint32(int32(c.Y)))
	}
	if mask&MaskWidth != 0 {
		values = append(values, uint32(c.Width))
	}
	if mask&MaskHeight != 0 {
		values = append(values, uint32(c.Height))
	}
	if mask&MaskBorderWidth != 0 {
		values = append(values, uint32(c.BorderWidth))
	}
	if mask&MaskSibling != 0 {
		values = append(values, uint32(c.Sibling))
	}
	if mask&MaskStackMode != 0 {
		values = append(values, uint32(c.StackMode))
	}
	return values
}

// PendingChangeSet accumulates not yet dispatched changes for one object.
type PendingChangeSet struct {
	Changes Changes
	Mask    Mask
}

// Merge copies the fields selected by mask from c, overwriting older values,
// and adds mask to the pending set.
func (p *PendingChangeSet) Merge(c Changes, mask Mask) {
	mask &= MaskAll
	if mask&MaskX != 0 {
		p.Changes.X = c.X
	}
	if mask&MaskY != 0 {
		p.Changes.Y = c.Y
	}
	if mask&MaskWidth != 0 {
		p.Changes.Width = c.Width
	}
	if mask&MaskHeight != 0 {
		p.Changes.Height = c.Height
	}
	if mask&MaskBorderWidth != 0 {
		p.Changes.BorderWidth = c.BorderWidth
	}
	if mask&MaskSibling != 0 {
		p.Changes.Sibling = c.Sibling
	}
	if mask&MaskStackMode != 0 {
		p.Changes.StackMode = c.StackMode
	}
	p.Mask |= mask
}

// Pending reports whether any field is waiting to be dispatched.
func (p *PendingChangeSet) Pending() bool {
	return p.Mask != 0
}

// take returns the accumulated changes and clears the mask.
func (p *PendingChangeSet) take() (Changes, Mask) {
	c, m := p.Changes, p.Mask
	p.Mask = 0
	return c, m
}
