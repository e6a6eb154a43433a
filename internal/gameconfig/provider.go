package gameconfig

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Provider supplies the current ruleset. Implementations may swap the
// ruleset at runtime; callers must not cache the returned value across
// actions.
type Provider interface {
	Rules() Ruleset
}

// Static is a fixed-ruleset Provider for tests and defaults
type Static struct {
	R Ruleset
}

// Rules returns the fixed ruleset
func (s Static) Rules() Ruleset {
	return s.R
}

// FileProvider serves a ruleset loaded from a YAML file. Reload swaps
// in a new copy atomically; readers always see a complete ruleset.
type FileProvider struct {
	path    string
	current atomic.Pointer[Ruleset]
	logger  *slog.Logger
}

// NewFileProvider loads the file once and fails on a malformed ruleset
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	p := &FileProvider{
		path:   path,
		logger: logger.With(slog.String("component", "gameconfig")),
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Rules returns the last successfully loaded ruleset
func (p *FileProvider) Rules() Ruleset {
	return *p.current.Load()
}

// Reload re-reads the file, keeping the previous ruleset on any error
func (p *FileProvider) Reload() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read ruleset: %w", err)
	}
	var rs Ruleset
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return fmt.Errorf("parse ruleset: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("validate ruleset: %w", err)
	}
	p.current.Store(&rs)
	p.logger.Info("ruleset loaded",
		slog.String("path", p.path),
		slog.Int("crops", len(rs.Crops)),
		slog.Int("plots", rs.PlotCount()),
	)
	return nil
}
