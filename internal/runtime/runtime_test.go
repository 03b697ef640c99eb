package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/flume/internal/config"
	pebblestore "github.com/rzbill/flume/internal/storage/pebble"
	"github.com/rzbill/flume/internal/stream"
	"github.com/rzbill/flume/pkg/streamid"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpenStreamSharesHandle(t *testing.T) {
	rt := newTestRuntime(t)
	a, err := rt.OpenStream("ns", "s")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	b, err := rt.OpenStream("ns", "s")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if a != b {
		t.Fatalf("expected one shared handle per stream")
	}
	if _, err := rt.OpenStream("ns", "other"); err != nil {
		t.Fatalf("open other: %v", err)
	}
}

func TestHealthAndRoundtrip(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, err := rt.EnsureNamespace("default"); err != nil {
		t.Fatalf("ensure ns: %v", err)
	}
	s, err := rt.OpenStream("default", "orders")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	id, err := s.Add(context.Background(), stream.AddOptions{ID: streamid.NewEntryID{Ms: 1, Seq: 1}}, [][]byte{[]byte("k"), []byte("v")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != (streamid.EntryID{Ms: 1, Seq: 1}) {
		t.Fatalf("got %v", id)
	}
}
