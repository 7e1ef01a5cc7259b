package types

import "time"

// EngineKind selects the conversion engine implementation.
type EngineKind string

const (
	EngineMarkitdown EngineKind = "markitdown"
	EngineRemote     EngineKind = "remote"
)

// RemoteConfig holds settings for the remote HTTP engine.
type RemoteConfig struct {
	// URL is the base URL of the remote conversion service
	// (e.g. "http://converter.internal:8080").
	URL string `json:"url" yaml:"url"`

	// APIKey authenticates against the remote service. Filled from flags,
	// environment, or the secrets directory; never serialized.
	APIKey string `json:"-" yaml:"-"`

	// MaxRetries is the number of retry attempts for rate-limited or
	// unavailable responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EngineConfig holds settings shared by every command that converts documents.
type EngineConfig struct {
	// Kind selects the engine: markitdown (container) or remote (HTTP).
	Kind EngineKind `json:"kind" yaml:"kind"`

	// Image is the container image for the markitdown engine.
	Image string `json:"image" yaml:"image"`

	// Timeout bounds a single conversion attempt; zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Remote configures the remote engine; ignored for other kinds.
	Remote RemoteConfig `json:"remote" yaml:"remote"`
}

// ConvertConfig holds settings for the convert command.
type ConvertConfig struct {
	EngineConfig `yaml:",inline"`

	// OutputDir receives <base>.md and <base>.txt for each successful
	// conversion; empty disables file output.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Parallel bounds concurrent conversions within a batch (default 4).
	Parallel int `json:"parallel" yaml:"parallel"`

	// ReportPath, when set, receives the batch's size reports as YAML.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`

	// HistoryPath, when set, enables the local conversion history database.
	HistoryPath string `json:"history_path,omitempty" yaml:"history_path,omitempty"`
}

// ServeConfig holds settings for the HTTP host.
type ServeConfig struct {
	EngineConfig `yaml:",inline"`

	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// MaxUploadBytes bounds a single upload request body (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Parallel bounds concurrent conversions within a batch (default 4).
	Parallel int `json:"parallel" yaml:"parallel"`

	// HistoryPath, when set, enables the local conversion history database.
	HistoryPath string `json:"history_path,omitempty" yaml:"history_path,omitempty"`
}
