package config

import (
	"os"
	"sync"
	"time"

	"github.com/lanefold/lanefold/pkg/runner"
)

// Provider hands out run configuration snapshots, re-reading the file when
// its modification time changes. Runs that already started keep the snapshot
// they were given, so a reload only affects subsequent runs.
type Provider struct {
	path string

	mu      sync.Mutex
	cfg     Config
	modTime time.Time
	loaded  bool
}

// NewProvider creates a provider for the given config path. The file is read
// lazily on the first Snapshot call.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Current returns the full configuration, reloading it if the file changed.
func (p *Provider) Current() (Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.path)
	switch {
	case os.IsNotExist(err):
		if !p.loaded {
			p.cfg = Default()
			p.loaded = true
		}
		return p.cfg, nil
	case err != nil:
		return p.cfg, err
	}

	if p.loaded && info.ModTime().Equal(p.modTime) {
		return p.cfg, nil
	}
	cfg, err := Load(p.path)
	if err != nil {
		// Keep serving the last good configuration on a bad edit.
		if p.loaded {
			return p.cfg, nil
		}
		return cfg, err
	}
	p.cfg = cfg
	p.modTime = info.ModTime()
	p.loaded = true
	return p.cfg, nil
}

// Snapshot implements runner.ConfigSource.
func (p *Provider) Snapshot() (runner.RunConfig, error) {
	cfg, err := p.Current()
	if err != nil {
		return runner.RunConfig{}, err
	}
	return runner.RunConfig{
		Genetic:       cfg.Genetic,
		Weights:       cfg.Weights,
		ReferenceYear: cfg.Discovery.ReferenceYear,
	}, nil
}
