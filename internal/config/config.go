package config

import (
    "os"
    "strings"

    "github.com/pkg/errors"
    "github.com/spf13/viper"

    "rawplay/internal/yuv"
)

// Sink kinds.
const (
    SinkRaw    = "raw"
    SinkFFplay = "ffplay"
    SinkWHEP   = "whep"
)

// Config is the runtime configuration. The source resolution is not here:
// it is fixed at build time in package frame.
type Config struct {
    Input     string
    Sink      string
    Output    string
    Width     int
    Height    int
    FPS       int
    Workers   int
    Narrowing yuv.Narrowing
    HTTPHost  string
    HTTPPort  int
    LogLevel  string
}

// New returns a viper instance with defaults, RAWPLAY_* environment binding
// and the optional rawplay.yaml search path set up.
func New() *viper.Viper {
    v := viper.New()

    v.SetDefault("input", "VIDEO_BYTES")
    v.SetDefault("sink", SinkFFplay)
    v.SetDefault("output", "-")
    v.SetDefault("width", 1280)
    v.SetDefault("height", 720)
    v.SetDefault("fps", 0)
    v.SetDefault("workers", 1)
    v.SetDefault("narrowing", "saturate")
    v.SetDefault("http.host", "0.0.0.0")
    v.SetDefault("http.port", 8000)
    v.SetDefault("log.level", "info")

    v.SetEnvPrefix("RAWPLAY")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    v.SetConfigName("rawplay")
    v.SetConfigType("yaml")
    for _, path := range []string{".", "$HOME/.rawplay", "/etc/rawplay"} {
        v.AddConfigPath(os.ExpandEnv(path))
    }
    return v
}

// ReadFile loads the config file if one exists. A missing file is not an
// error; a malformed one is.
func ReadFile(v *viper.Viper) error {
    if err := v.ReadInConfig(); err != nil {
        if _, ok := err.(viper.ConfigFileNotFoundError); ok {
            return nil
        }
        return errors.Wrap(err, "read config file")
    }
    return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
    cfg := Config{
        Input:    v.GetString("input"),
        Sink:     strings.ToLower(v.GetString("sink")),
        Output:   v.GetString("output"),
        Width:    v.GetInt("width"),
        Height:   v.GetInt("height"),
        FPS:      v.GetInt("fps"),
        Workers:  v.GetInt("workers"),
        HTTPHost: v.GetString("http.host"),
        HTTPPort: v.GetInt("http.port"),
        LogLevel: v.GetString("log.level"),
    }
    n, err := yuv.ParseNarrowing(v.GetString("narrowing"))
    if err != nil {
        return cfg, err
    }
    cfg.Narrowing = n
    return cfg, cfg.Validate()
}

func (c Config) Validate() error {
    if c.Input == "" {
        return errors.New("input path is empty")
    }
    switch c.Sink {
    case SinkRaw, SinkFFplay, SinkWHEP:
    default:
        return errors.Errorf("unknown sink %q (want raw, ffplay or whep)", c.Sink)
    }
    if c.Width <= 0 || c.Height <= 0 {
        return errors.Errorf("target resolution %dx%d must be positive", c.Width, c.Height)
    }
    if c.Sink == SinkWHEP && (c.Width%2 != 0 || c.Height%2 != 0) {
        return errors.Errorf("whep sink needs an even resolution, got %dx%d", c.Width, c.Height)
    }
    if c.FPS < 0 {
        return errors.Errorf("fps %d is negative", c.FPS)
    }
    if c.Workers < 0 {
        return errors.Errorf("workers %d is negative", c.Workers)
    }
    if c.Sink == SinkWHEP && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
        return errors.Errorf("http port %d out of range", c.HTTPPort)
    }
    return nil
}
