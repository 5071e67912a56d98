package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestIsCustomShape(t *testing.T) {
	tests := []struct {
		name   string
		rects  []xproto.Rectangle
		border uint16
		want   bool
	}{
		{
			name:  "plain rectangle",
			rects: []xproto.Rectangle{{X: 0, Y: 0, Width: 100, Height: 50}},
			want:  false,
		},
		{
			name:   "plain rectangle with border",
			rects:  []xproto.Rectangle{{X: -2, Y: -2, Width: 104, Height: 54}},
			border: 2,
			want:   false,
		},
		{
			name:  "inset rectangle",
			rects: []xproto.Rectangle{{X: 5, Y: 0, Width: 90, Height: 50}},
			want:  true,
		},
		{
			name: "rounded corners",
			rects: []xproto.Rectangle{
				{X: 2, Y: 0, Width: 96, Height: 2},
				{X: 0, Y: 2, Width: 100, Height: 48},
			},
			want: true,
		},
		{
			name:  "empty shape",
			rects: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCustomShape(tt.rects, 100, 50, tt.border); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
