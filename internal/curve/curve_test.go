package curve

import (
	"reflect"
	"testing"
)

func TestBuildTurnsLength(t *testing.T) {
	for n := 0; n <= 16; n++ {
		ts := BuildTurns(n)
		if want := 1<<n - 1; len(ts) != want {
			t.Errorf("order %d: expected %d turns, got %d", n, want, len(ts))
		}
		if ts.Order() != n {
			t.Errorf("order %d: Order() returned %d", n, ts.Order())
		}
	}
}

func TestBuildTurnsRecursiveRule(t *testing.T) {
	for n := 1; n <= 12; n++ {
		prev := BuildTurns(n - 1)
		cur := BuildTurns(n)
		m := len(prev)

		if !reflect.DeepEqual(Turns(cur[:m]), prev) {
			t.Fatalf("order %d: prefix differs from order %d", n, n-1)
		}
		if cur[m] != Right {
			t.Fatalf("order %d: middle turn is %v, want R", n, cur[m])
		}
		for i := 0; i < m; i++ {
			if cur[m+1+i] != prev[m-1-i].Invert() {
				t.Fatalf("order %d: suffix mismatch at %d", n, i)
			}
		}
	}
}

func TestGrowMatchesBuild(t *testing.T) {
	ts := BuildTurns(0)
	for n := 1; n <= 14; n++ {
		grown := ts.Grow()
		if !reflect.DeepEqual(grown, BuildTurns(n)) {
			t.Fatalf("order %d: incremental and batch sequences differ", n)
		}
		ts = grown
	}
}

func TestGrowDoesNotMutate(t *testing.T) {
	ts := BuildTurns(3)
	before := append(Turns(nil), ts...)
	_ = ts.Grow()
	if !reflect.DeepEqual(ts, before) {
		t.Error("Grow modified its receiver")
	}
}

func TestBuildTurnsClamps(t *testing.T) {
	if len(BuildTurns(-3)) != 0 {
		t.Error("negative order should clamp to 0")
	}
	if got := BuildTurns(MaxOrder + 5).Order(); got != MaxOrder {
		t.Errorf("expected clamp to %d, got %d", MaxOrder, got)
	}
}

func TestConcreteOrders(t *testing.T) {
	tests := []struct {
		order  int
		turns  string
		points Path
	}{
		{0, "", Path{{0, 0}, {1, 0}}},
		{1, "R", Path{{0, 0}, {1, 0}, {1, 1}}},
		{2, "RRL", Path{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 2}}},
		{3, "RRLRRLL", nil},
	}

	for _, tt := range tests {
		ts := BuildTurns(tt.order)
		if ts.String() != tt.turns {
			t.Errorf("order %d: turns %q, want %q", tt.order, ts.String(), tt.turns)
		}
		if tt.points == nil {
			continue
		}
		if got := BuildPoints(ts); !reflect.DeepEqual(got, tt.points) {
			t.Errorf("order %d: points %v, want %v", tt.order, got, tt.points)
		}
	}
}

func TestBuildPointsUnitSteps(t *testing.T) {
	for n := 0; n <= 14; n++ {
		path := BuildPoints(BuildTurns(n))
		if want := 1<<n + 1; len(path) != want {
			t.Fatalf("order %d: expected %d points, got %d", n, want, len(path))
		}
		if path[0] != (GridPoint{}) {
			t.Fatalf("order %d: path starts at %v", n, path[0])
		}
		for i := 1; i < len(path); i++ {
			dx := abs(path[i].X - path[i-1].X)
			dy := abs(path[i].Y - path[i-1].Y)
			if dx+dy != 1 {
				t.Fatalf("order %d: step %d is (%d,%d)", n, i, dx, dy)
			}
		}
	}
}

func TestBoundsContainOrigin(t *testing.T) {
	for n := 0; n <= 14; n++ {
		b := Build(n).Bounds
		if b.MinX > 0 || b.MaxX < 0 || b.MinY > 0 || b.MaxY < 0 {
			t.Errorf("order %d: bounds %+v exclude origin", n, b)
		}
	}
}

func TestComputeBounds(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want Bounds
	}{
		{"empty", nil, Bounds{}},
		{"order 0", Path{{0, 0}, {1, 0}}, Bounds{0, 0, 1, 0}},
		{"order 2", Path{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 2}}, Bounds{0, 0, 1, 2}},
		{"negative", Path{{0, 0}, {-2, 3}, {4, -1}}, Bounds{-2, -1, 4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeBounds(tt.path); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(11)
	b := Build(11)
	if !reflect.DeepEqual(a, b) {
		t.Error("rebuilding the same order produced different curves")
	}
	if a.Segments() != 1<<11 {
		t.Errorf("expected %d segments, got %d", 1<<11, a.Segments())
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func BenchmarkBuild16(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Build(16)
	}
}
