package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/dragonbg/internal/anim"
	"github.com/san-kum/dragonbg/internal/metrics"
	"github.com/san-kum/dragonbg/internal/surface"
)

const writeWait = 5 * time.Second

// stream upgrades to a websocket and sends PNG frames as binary messages
// until the client goes away. Each connection owns its driver and raster.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrame(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bg, err := backgroundColor(req.opts.Background)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sid := fmt.Sprintf("S%d", s.nextID.Add(1))
	log := s.log.With(slog.String("stream", sid))
	s.streams.Add(1)
	defer s.streams.Add(-1)
	log.Info("stream opened", slog.Int("width", req.opts.Width), slog.Int("height", req.opts.Height))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: only used to notice the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	raster := surface.NewRaster(req.opts.Width, req.opts.Height, bg)
	defer raster.Close()
	d := anim.New(raster, s.cfg.Anim)
	d.Resize(anim.Viewport{Width: float64(req.opts.Width), Height: float64(req.opts.Height), PixelRatio: 1})

	frames, stop := anim.Ticker(s.cfg.StreamFPS)
	defer stop()
	start := time.Now()
	last := start
	stats := metrics.Default()
	defer func() {
		v := stats.Values()
		log.Info("stream closed",
			slog.Int("frames", stats.Frames()),
			slog.Float64("fps", v["fps"]),
			slog.Float64("frame_ms", v["frame_ms"]))
	}()
	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-frames:
			begin := time.Now()
			if err := d.TickAt(now.Sub(start)); err != nil {
				log.Warn("stream stopped", slog.Any("err", err))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "render failed"),
					time.Now().Add(time.Second))
				return
			}
			buf.Reset()
			if err := raster.EncodePNG(&buf); err != nil {
				log.Warn("encode frame", slog.Any("err", err))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			stats.Observe(metrics.Sample{Interval: now.Sub(last), Cost: time.Since(begin), State: d.State()})
			last = now
			if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
				log.Debug("write frame", slog.Any("err", err))
				return
			}
		}
	}
}
