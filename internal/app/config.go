package app

import (
	"errors"
	"fmt"

	"github.com/vk/facegraph/internal/compiled"
)

// UserValue is an external value applied to a node before the first frame.
type UserValue struct {
	Node  string
	Value float32
	Op    compiled.ValueOp
}

// Blend is a register blend started on a node at the first frame.
type Blend struct {
	Node    string
	Value   float32
	Seconds float32
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl file or directory
	BlobPath  string // compiled graph output, optional

	Frames     int
	FPS        float64
	UserValues []UserValue
	Blends     []Blend

	LiveURL       string
	LiveNamespace string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %g", cfg.FPS)
	}
	for _, b := range cfg.Blends {
		if b.Seconds < 0 {
			return nil, fmt.Errorf("blend on '%s' has negative duration", b.Node)
		}
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
