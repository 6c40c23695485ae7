package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"

    "rawplay/internal/config"
    "rawplay/internal/frame"
    "rawplay/internal/player"
    "rawplay/internal/version"
    "rawplay/internal/yuv"
)

func main() {
    log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
    if err := newRootCmd().Execute(); err != nil {
        log.Fatalf("rawplay: %v", err)
    }
}

func newRootCmd() *cobra.Command {
    v := config.New()
    var cfgFile string

    cmd := &cobra.Command{
        Use:           "rawplay",
        Short:         "Loop a raw YUV420p video onto a framebuffer",
        Long:          "rawplay reads fixed-size 384x216 YUV420p frames from a flat file and renders them, scaled to the display's resolution, in an endless loop.",
        Version:       version.String(),
        SilenceUsage:  true,
        SilenceErrors: true,
        RunE: func(cmd *cobra.Command, args []string) error {
            if cfgFile != "" {
                v.SetConfigFile(cfgFile)
            }
            if err := config.ReadFile(v); err != nil {
                return err
            }
            cfg, err := config.Load(v)
            if err != nil {
                return errors.Wrap(err, "config")
            }
            ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
            defer stop()
            return run(ctx, cfg)
        },
    }

    f := cmd.Flags()
    f.StringVar(&cfgFile, "config", "", "config file (default ./rawplay.yaml, $HOME/.rawplay/rawplay.yaml, /etc/rawplay/rawplay.yaml)")
    f.StringP("input", "i", "", "raw YUV420p video file")
    f.String("sink", "", "output sink: raw, ffplay or whep")
    f.StringP("output", "o", "", "output path for the raw sink (- for stdout)")
    f.Int("width", 0, "target width")
    f.Int("height", 0, "target height")
    f.Int("fps", 0, "pace the loop at this rate (0 = as fast as the sink accepts)")
    f.Int("workers", 0, "goroutines converting rows of each frame")
    f.String("narrowing", "", "out-of-range channel handling: saturate or wrap")
    f.String("http-host", "", "preview server bind host (whep sink)")
    f.Int("http-port", 0, "preview server bind port (whep sink)")
    f.String("log-level", "", "log level")
    bindFlags(v, cmd)
    return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
    keys := map[string]string{
        "input": "input", "sink": "sink", "output": "output",
        "width": "width", "height": "height", "fps": "fps",
        "workers": "workers", "narrowing": "narrowing",
        "http-host": "http.host", "http-port": "http.port",
        "log-level": "log.level",
    }
    for flag, key := range keys {
        _ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
    }
}

func run(ctx context.Context, cfg config.Config) error {
    if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
        log.SetLevel(lvl)
    } else {
        log.Warnf("unknown log level %q, keeping %s", cfg.LogLevel, log.GetLevel())
    }
    log.Printf("rawplay %s", version.String())

    fs, err := frame.OpenFile(cfg.Input)
    if err != nil {
        return err
    }
    src, err := frame.NewSource(fs, frame.DefaultGeometry)
    if err != nil {
        _ = fs.Close()
        return err
    }
    defer src.Close()
    log.WithFields(log.Fields{"path": cfg.Input, "frames": src.FrameCount(), "geometry": src.Geometry().String()}).Info("video opened")

    stats := &player.Stats{}
    sink, closeSink, err := openSink(cfg, stats)
    if err != nil {
        return err
    }
    defer closeSink()

    p, err := player.New(src, frame.DefaultGeometry, sink, player.Options{
        Convert: yuv.Options{Narrowing: cfg.Narrowing, Workers: cfg.Workers},
        FPS:     cfg.FPS,
        Stats:   stats,
    })
    if err != nil {
        return err
    }
    return p.Run(ctx)
}
