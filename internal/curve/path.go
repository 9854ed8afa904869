package curve

import "fmt"

// Heading is the direction of travel: 0 right, 1 down (+y), 2 left, 3 up.
type Heading uint8

const (
	HeadRight Heading = iota
	HeadDown
	HeadLeft
	HeadUp
)

var steps = [4]GridPoint{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

func (h Heading) Turn(t Turn) Heading {
	if t == Right {
		return (h + 1) & 3
	}
	return (h + 3) & 3
}

type GridPoint struct {
	X, Y int
}

func (p GridPoint) Add(q GridPoint) GridPoint { return GridPoint{p.X + q.X, p.Y + q.Y} }

func (p GridPoint) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

type Path []GridPoint

// BuildPoints walks turns from the origin heading right. The result has
// len(turns)+2 points.
func BuildPoints(turns Turns) Path {
	path := make(Path, 0, len(turns)+2)
	pos := GridPoint{}
	head := HeadRight
	path = append(path, pos)

	pos = pos.Add(steps[head])
	path = append(path, pos)
	for _, t := range turns {
		head = head.Turn(t)
		pos = pos.Add(steps[head])
		path = append(path, pos)
	}
	return path
}

// Bounds is the axis-aligned box of a path in grid units.
type Bounds struct {
	MinX, MinY, MaxX, MaxY int
}

func (b Bounds) Width() int  { return b.MaxX - b.MinX }
func (b Bounds) Height() int { return b.MaxY - b.MinY }

// Center returns the box centre in grid units.
func (b Bounds) Center() (float64, float64) {
	return float64(b.MinX+b.MaxX) / 2, float64(b.MinY+b.MaxY) / 2
}

func ComputeBounds(path Path) Bounds {
	if len(path) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: path[0].X, MaxX: path[0].X, MinY: path[0].Y, MaxY: path[0].Y}
	for _, p := range path[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// Curve bundles everything derived from a single order.
type Curve struct {
	Order  int
	Turns  Turns
	Path   Path
	Bounds Bounds
}

func Build(order int) Curve {
	return FromTurns(BuildTurns(order))
}

// FromTurns derives path and bounds from an already built sequence.
func FromTurns(ts Turns) Curve {
	path := BuildPoints(ts)
	return Curve{
		Order:  ts.Order(),
		Turns:  ts,
		Path:   path,
		Bounds: ComputeBounds(path),
	}
}

// Segments returns the number of unit segments, 2^order.
func (c Curve) Segments() int {
	if len(c.Path) == 0 {
		return 0
	}
	return len(c.Path) - 1
}
