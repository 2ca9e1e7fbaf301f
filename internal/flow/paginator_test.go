package flow

import "testing"

func TestClampIndex(t *testing.T) {
	tests := []struct {
		name        string
		idx, length int
		want        int
	}{
		{"in range", 1, 3, 1},
		{"negative", -5, 3, 0},
		{"past end", 7, 3, 2},
		{"at end", 2, 3, 2},
		{"single item", 10, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampIndex(tt.idx, tt.length); got != tt.want {
				t.Errorf("ClampIndex(%d, %d) = %d, want %d", tt.idx, tt.length, got, tt.want)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name             string
		idx, dir, length int
		want             int
		wantMoved        bool
	}{
		{"forward", 0, +1, 3, 1, true},
		{"backward", 2, -1, 3, 1, true},
		{"at last boundary", 2, +1, 3, 2, false},
		{"at first boundary", 0, -1, 3, 0, false},
		{"stale index clamped before step", 9, +1, 3, 2, false},
		{"stale index clamped then moves back", 9, -1, 3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := Advance(tt.idx, tt.dir, tt.length)
			if got != tt.want || moved != tt.wantMoved {
				t.Errorf("Advance(%d, %d, %d) = (%d, %v), want (%d, %v)",
					tt.idx, tt.dir, tt.length, got, moved, tt.want, tt.wantMoved)
			}
		})
	}
}

func TestAfterDelete(t *testing.T) {
	tests := []struct {
		name           string
		idx, newLength int
		want           int
		wantOK         bool
	}{
		{"middle item deleted shows successor", 1, 3, 1, true},
		{"last item deleted slides back", 2, 2, 1, true},
		{"only item deleted clears cursor", 0, 0, 0, false},
		{"first item deleted keeps position", 0, 2, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AfterDelete(tt.idx, tt.newLength)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("AfterDelete(%d, %d) = (%d, %v), want (%d, %v)",
					tt.idx, tt.newLength, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
