package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/namespace"
	pebblestore "github.com/rzbill/flume/internal/storage/pebble"
	"github.com/rzbill/flume/internal/stream"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage, config, and stream handles for a single-node instance.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config

	mu      sync.Mutex
	streams map[string]*stream.Stream
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{db: db, config: opts.Config, streams: map[string]*stream.Stream{}}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// EnsureNamespace creates a namespace record if absent.
func (r *Runtime) EnsureNamespace(name string) (namespace.Meta, error) {
	return namespace.EnsureNamespace(r.db, name)
}

// OpenStream returns the shared handle for a namespace/name pair, opening it
// on first use.
func (r *Runtime) OpenStream(ns, name string) (*stream.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ns + "/" + name
	if s, ok := r.streams[key]; ok {
		return s, nil
	}
	s, err := stream.Open(r.db, ns, name)
	if err != nil {
		return nil, err
	}
	r.streams[key] = s
	return s, nil
}

// DB exposes the underlying store for tooling and tests.
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
