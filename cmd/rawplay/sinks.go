package main

import (
    "context"
    "net/http"
    "time"

    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"

    "rawplay/internal/config"
    "rawplay/internal/display"
    "rawplay/internal/server"
    "rawplay/internal/stream"
)

// openSink builds the configured display and returns the function that
// tears it down.
func openSink(cfg config.Config, stats server.StatsSource) (display.Sink, func(), error) {
    switch cfg.Sink {
    case config.SinkRaw:
        s, err := display.OpenRawFile(cfg.Output, cfg.Width, cfg.Height)
        if err != nil {
            return nil, nil, err
        }
        log.Printf("writing rgb24 %dx%d frames to %s", cfg.Width, cfg.Height, cfg.Output)
        return s, func() { _ = s.Close() }, nil

    case config.SinkFFplay:
        s, err := display.StartFFplay(cfg.Width, cfg.Height, "rawplay")
        if err != nil {
            return nil, nil, err
        }
        return s, func() { _ = s.Close() }, nil

    case config.SinkWHEP:
        return openPreview(cfg, stats)
    }
    return nil, nil, errors.Errorf("unknown sink %q", cfg.Sink)
}

// openPreview encodes frames to H.264 and serves them to browsers over WHEP.
func openPreview(cfg config.Config, stats server.StatsSource) (display.Sink, func(), error) {
    feed := stream.NewSampleBroadcaster()
    fps := cfg.FPS
    if fps <= 0 { fps = 30 }
    enc, err := stream.StartEncoder(stream.EncoderConfig{Width: cfg.Width, Height: cfg.Height, FPS: fps}, feed)
    if err != nil {
        feed.Close()
        return nil, nil, err
    }

    scfg := server.Config{Host: cfg.HTTPHost, Port: cfg.HTTPPort}
    preview := server.NewPreviewServer(scfg, feed, stats)
    mux := http.NewServeMux()
    preview.RegisterRoutes(mux)
    srv := &http.Server{
        Addr:              scfg.Addr(),
        Handler:           mux,
        ReadHeaderTimeout: 10 * time.Second,
    }
    go func() {
        log.Printf("WHEP preview listening on http://%s", srv.Addr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("ListenAndServe: %v", err)
        }
    }()

    closeAll := func() {
        ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
        defer cancel()
        _ = srv.Shutdown(ctx)
        preview.CloseAll()
        enc.Stop()
        feed.Close()
        log.Printf("preview stopped after %d samples", enc.Samples())
    }
    return enc, closeAll, nil
}
