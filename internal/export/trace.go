package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dragonbg/internal/curve"
)

type TraceData struct {
	Order    int      `json:"order"`
	Segments int      `json:"segments"`
	Turns    string   `json:"turns"`
	Points   [][2]int `json:"points"`
	Bounds   [4]int   `json:"bounds"` // min x, min y, max x, max y
}

func NewTrace(c curve.Curve) TraceData {
	data := TraceData{
		Order:    c.Order,
		Segments: c.Segments(),
		Turns:    c.Turns.String(),
		Points:   make([][2]int, len(c.Path)),
		Bounds:   [4]int{c.Bounds.MinX, c.Bounds.MinY, c.Bounds.MaxX, c.Bounds.MaxY},
	}
	for i, p := range c.Path {
		data.Points[i] = [2]int{p.X, p.Y}
	}
	return data
}

// TraceJSON writes the turn sequence and path of c as indented JSON.
func TraceJSON(w io.Writer, c curve.Curve) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewTrace(c))
}
