package server

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/san-kum/dragonbg/internal/palette"
)

//go:generate templ generate -f views.templ

// pageView feeds the index page in views.templ.
type pageView struct {
	Title      string
	Background string
	StreamFPS  int
	MaxWidth   int
	MaxHeight  int
}

func (s *Server) pageView() pageView {
	bg := "#0a0a0a"
	if c, err := palette.Parse(s.cfg.Background); s.cfg.Background != "" && err == nil {
		bg = c.Hex()
	}
	return pageView{
		Title:      "dragonbg",
		Background: bg,
		StreamFPS:  s.cfg.StreamFPS,
		MaxWidth:   1600,
		MaxHeight:  1200,
	}
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	render(w, r, indexPage(s.pageView()))
}
