// Package server serves rendered frames and a live websocket stream of the
// animation over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/export"
	"github.com/san-kum/dragonbg/internal/palette"
)

const (
	MaxFrameSize  = 4096
	MaxFrameTime  = time.Hour
	defaultWidth  = 800
	defaultHeight = 600
)

//go:embed static/*
var embeddedStatic embed.FS

type Config struct {
	Anim       anim.Config
	Background string
	StreamFPS  int
	Logger     *slog.Logger
}

type Server struct {
	cfg     Config
	log     *slog.Logger
	started time.Time

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	streams  atomic.Int64
}

func New(cfg Config) *Server {
	if cfg.StreamFPS <= 0 {
		cfg.StreamFPS = 12
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:     cfg,
		log:     logger,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// Routes returns the router. Everything except the websocket runs under a
// request timeout.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/healthz", s.health)
		r.Get("/frame.png", s.framePNG)
		r.Get("/frame.svg", s.frameSVG)
		r.Get("/", s.index)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	})
	r.Get("/ws", s.stream)
	return r
}

type frameRequest struct {
	opts export.Options
	at   time.Duration
}

func (s *Server) parseFrame(r *http.Request) (frameRequest, error) {
	q := r.URL.Query()
	req := frameRequest{opts: export.Options{
		Width:      defaultWidth,
		Height:     defaultHeight,
		PixelRatio: 1,
		Background: s.cfg.Background,
	}}
	var err error
	if req.opts.Width, err = intParam(q.Get("w"), defaultWidth, 1, MaxFrameSize); err != nil {
		return req, fmt.Errorf("w: %w", err)
	}
	if req.opts.Height, err = intParam(q.Get("h"), defaultHeight, 1, MaxFrameSize); err != nil {
		return req, fmt.Errorf("h: %w", err)
	}
	if v := q.Get("t"); v != "" {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(sec) || sec < 0 || sec > MaxFrameTime.Seconds() {
			return req, fmt.Errorf("t: want seconds in [0, %v]", MaxFrameTime.Seconds())
		}
		req.at = time.Duration(sec * float64(time.Second))
	} else {
		req.at = s.liveTime()
	}
	return req, nil
}

// liveTime is the server uptime folded into one schedule cycle, so that
// without an explicit t successive requests follow the animation.
func (s *Server) liveTime() time.Duration {
	up := time.Since(s.started)
	if c := s.cfg.Anim.Schedule.Cycle(); c > 0 {
		return up % c
	}
	return min(up, s.cfg.Anim.Reveal.Duration)
}

func backgroundColor(hex string) (color.Color, error) {
	if hex == "" {
		return nil, nil
	}
	return palette.Parse(hex)
}

func intParam(v string, fallback, lo, hi int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("want %d..%d, got %d", lo, hi, n)
	}
	return n, nil
}

func (s *Server) framePNG(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrame(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := export.PNG(w, s.cfg.Anim, req.opts, req.at); err != nil {
		s.log.Error("render png", slog.Any("err", err))
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func (s *Server) frameSVG(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrame(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := export.SVG(w, s.cfg.Anim, req.opts, req.at); err != nil {
		s.log.Error("render svg", slog.Any("err", err))
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

type healthResponse struct {
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime_seconds"`
	Streams int64   `json:"streams"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Seconds(),
		Streams: s.streams.Load(),
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", "http://"+addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
