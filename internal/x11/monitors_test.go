package x11

import "testing"

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b span
		want span
	}{
		{"overlap", span{0, 0, 100, 100}, span{50, 20, 150, 80}, span{50, 20, 100, 80}},
		{"contained", span{0, 0, 1920, 1080}, span{0, 32, 1920, 1080}, span{0, 32, 1920, 1080}},
		{"touching edges", span{0, 0, 100, 100}, span{100, 0, 200, 100}, span{}},
		{"disjoint", span{0, 0, 10, 10}, span{20, 20, 30, 30}, span{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intersect(tt.a, tt.b); got != tt.want {
				t.Fatalf("intersect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	if got := monitorAt(monitors, 100, 100); got != 0 {
		t.Fatalf("monitorAt(100,100) = %d, want 0", got)
	}
	if got := monitorAt(monitors, 1920, 0); got != 1 {
		t.Fatalf("monitorAt(1920,0) = %d, want 1", got)
	}
	if got := monitorAt(monitors, 100, 1200); got != -1 {
		t.Fatalf("monitorAt(100,1200) = %d, want -1", got)
	}
}
