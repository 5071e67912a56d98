package window

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/configbuf/internal/configure"
)

type request struct {
	target  string
	changes configure.Changes
	mask    configure.Mask
}

type fakeServer struct {
	requests []request
	fail     bool
}

func (f *fakeServer) RequestConfigureOnFrame(c configure.Changes, m configure.Mask) {
	f.requests = append(f.requests, request{"frame", c, m})
}

func (f *fakeServer) RequestConfigureOnWrapper(c configure.Changes, m configure.Mask) {
	f.requests = append(f.requests, request{"wrapper", c, m})
}

func (f *fakeServer) RequestConfigureOnClient(c configure.Changes, m configure.Mask) {
	f.requests = append(f.requests, request{"client", c, m})
}

func (f *fakeServer) HasCustomShape() bool { return false }

func (f *fakeServer) QueryAttributes(a *configure.Attributes) bool {
	if f.fail {
		return false
	}
	a.Width = 1
	return true
}

func (f *fakeServer) QueryFrameAttributes(a *configure.Attributes) bool {
	return f.QueryAttributes(a)
}

func (f *fakeServer) find(target string) (request, bool) {
	for _, r := range f.requests {
		if r.target == target {
			return r, true
		}
	}
	return request{}, false
}

var testExtents = Extents{Left: 4, Right: 4, Top: 20, Bottom: 4}

func TestSetGeometryPlacesAllObjects(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})

	if err := w.SetGeometry(Rect{X: 100, Y: 100, Width: 300, Height: 200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, ok := srv.find("frame")
	if !ok {
		t.Fatalf("expected frame request")
	}
	if frame.changes.X != 96 || frame.changes.Y != 80 || frame.changes.Width != 308 || frame.changes.Height != 224 {
		t.Fatalf("unexpected frame geometry %+v", frame.changes)
	}
	wrapper, _ := srv.find("wrapper")
	if wrapper.changes.X != 4 || wrapper.changes.Y != 20 || wrapper.changes.Width != 300 {
		t.Fatalf("unexpected wrapper geometry %+v", wrapper.changes)
	}
	client, _ := srv.find("client")
	if client.mask != configure.MaskPosition|configure.MaskSize || client.changes.Height != 200 {
		t.Fatalf("unexpected client request %+v", client)
	}
}

func TestMoveOnlyTouchesFrame(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})
	_ = w.SetGeometry(Rect{X: 0, Y: 0, Width: 50, Height: 50})
	srv.requests = nil

	_ = w.SetGeometry(Rect{X: 10, Y: 0, Width: 50, Height: 50})

	if len(srv.requests) != 1 || srv.requests[0].target != "frame" {
		t.Fatalf("expected single frame request, got %+v", srv.requests)
	}
	if srv.requests[0].mask != configure.MaskX {
		t.Fatalf("expected mask x, got %v", srv.requests[0].mask)
	}
}

func TestFrozenAnimationCoalesces(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})
	_ = w.SetGeometry(Rect{X: 0, Y: 0, Width: 50, Height: 50})
	srv.requests = nil

	lock := w.Freeze()
	for i := 1; i <= 10; i++ {
		_ = w.SetGeometry(Rect{X: i * 10, Y: i, Width: 50 + i, Height: 50})
	}
	if len(srv.requests) != 0 {
		t.Fatalf("expected no requests while frozen, got %d", len(srv.requests))
	}
	lock.Close()

	if len(srv.requests) != 3 {
		t.Fatalf("expected one request per object, got %+v", srv.requests)
	}
	frame, _ := srv.find("frame")
	if frame.changes.X != 96 || frame.changes.Width != 68 {
		t.Fatalf("expected final frame geometry, got %+v", frame.changes)
	}
}

func TestRestackBypassesFreeze(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})
	lock := w.Freeze()
	defer lock.Close()

	w.Restack(77, xproto.StackModeAbove)

	r, ok := srv.find("frame")
	if !ok {
		t.Fatalf("expected frame restack while frozen")
	}
	if r.mask != configure.MaskStacking || r.changes.Sibling != 77 {
		t.Fatalf("unexpected restack request %+v", r)
	}

	srv.requests = nil
	w.Raise()
	if len(srv.requests) != 1 || srv.requests[0].mask != configure.MaskStackMode {
		t.Fatalf("expected stack mode only, got %+v", srv.requests)
	}
}

func TestSetExtentsRepositionsWrapper(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})
	_ = w.SetGeometry(Rect{X: 100, Y: 100, Width: 50, Height: 50})
	srv.requests = nil

	w.SetExtents(Extents{Left: 4, Right: 4, Top: 30, Bottom: 4})

	wrapper, ok := srv.find("wrapper")
	if !ok || wrapper.mask != configure.MaskY || wrapper.changes.Y != 30 {
		t.Fatalf("unexpected wrapper request %+v", wrapper)
	}
	if _, ok := srv.find("client"); ok {
		t.Fatalf("expected client untouched")
	}
}

func TestSetGeometryRejectsEmptySize(t *testing.T) {
	w := New(&fakeServer{}, testExtents, configure.Options{})
	if err := w.SetGeometry(Rect{Width: 0, Height: 10}); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestServerGeometryError(t *testing.T) {
	srv := &fakeServer{fail: true}
	w := New(srv, testExtents, configure.Options{})

	if _, err := w.ServerGeometry(); !errors.Is(err, ErrNoServerState) {
		t.Fatalf("expected ErrNoServerState, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	if clampI16(40000) != 32767 || clampI16(-40000) != -32768 {
		t.Fatalf("unexpected int16 clamp")
	}
	if clampU16(-1) != 0 || clampU16(70000) != 65535 {
		t.Fatalf("unexpected uint16 clamp")
	}
}

func TestBorderWidthGrowsWrapperAndFrame(t *testing.T) {
	srv := &fakeServer{}
	w := New(srv, testExtents, configure.Options{})
	_ = w.SetGeometry(Rect{X: 100, Y: 100, Width: 300, Height: 200})
	srv.requests = nil

	w.SetBorderWidth(2)

	client, ok := srv.find("client")
	if !ok || client.mask != configure.MaskBorderWidth || client.changes.BorderWidth != 2 {
		t.Fatalf("unexpected client request %+v", client)
	}
	wrapper, ok := srv.find("wrapper")
	if !ok || wrapper.mask != configure.MaskSize || wrapper.changes.Width != 304 || wrapper.changes.Height != 204 {
		t.Fatalf("expected wrapper to fit the border, got %+v", wrapper)
	}
	frame, ok := srv.find("frame")
	if !ok || frame.mask != configure.MaskSize || frame.changes.Width != 312 || frame.changes.Height != 228 {
		t.Fatalf("expected frame to fit the border, got %+v", frame)
	}

	srv.requests = nil
	w.SetBorderWidth(2)
	if len(srv.requests) != 0 {
		t.Fatalf("expected unchanged border to be a no-op, got %+v", srv.requests)
	}
}
