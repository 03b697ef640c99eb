package serverrun

import (
	"context"
	"net/http"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/flume/internal/config"
	pebblestore "github.com/rzbill/flume/internal/storage/pebble"
)

func TestRunServesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			DataDir:  t.TempDir(),
			HTTPAddr: "127.0.0.1:18089",
			Fsync:    pebblestore.FsyncModeNever,
			Config:   cfgpkg.Default(),
		})
	}()

	// Poll until the server answers health checks.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://127.0.0.1:18089/v1/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after cancel")
	}
}

func TestGetenvDefault(t *testing.T) {
	orig := getenv
	defer func() { getenv = orig }()
	getenv = func(key string) string {
		if key == "SET" {
			return "value"
		}
		return ""
	}
	if got := getenvDefault("SET", "fallback"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := getenvDefault("UNSET", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}
