package frame

import "fmt"

// ConfigError reports a stream or geometry that can never produce frames.
// It is raised at startup and is not recoverable.
type ConfigError struct {
    Reason string
    Err    error
}

func (e *ConfigError) Error() string {
    if e.Err != nil {
        return "frame: configuration: " + e.Reason + ": " + e.Err.Error()
    }
    return "frame: configuration: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StorageError reports a failed seek or read against the stream. The stream
// should be considered unusable afterwards.
type StorageError struct {
    Op     string // "seek" or "read"
    Offset int64
    Err    error
}

func (e *StorageError) Error() string {
    return fmt.Sprintf("frame: storage: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
