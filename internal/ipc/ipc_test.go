package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeHandler struct {
	mu       sync.Mutex
	reloads  int
	ticks    int
	failTick bool
}

func (h *fakeHandler) Status(context.Context) (StatusData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return StatusData{
		PID:             1234,
		Ticks:           uint64(h.ticks),
		LastTick:        TickData{Outcome: "shown", App: "Safari", Size: 30},
		SurfaceCount:    4,
		SurfacesVisible: true,
		DaemonRunning:   true,
	}, nil
}

func (h *fakeHandler) Tick(context.Context) (TickData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failTick {
		return TickData{}, errors.New("loop stopped")
	}
	h.ticks++
	return TickData{Outcome: "hidden", Reason: "not maximized", App: "Terminal"}, nil
}

func (h *fakeHandler) Reload(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return nil
}

// startServer runs a server on a short socket path; unix socket paths are
// limited to about 100 bytes, which t.TempDir can exceed.
func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "cfx")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(socket, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
		if _, err := os.Stat(socket); !os.IsNotExist(err) {
			t.Errorf("socket not removed on shutdown: %v", err)
		}
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if info, err := os.Stat(socket); err == nil {
			if info.Mode().Perm() != 0600 {
				t.Fatalf("socket mode = %v, want 0600", info.Mode().Perm())
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return NewClientWithSocket(socket)
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &fakeHandler{}
	client := startServer(t, h)

	tick, err := client.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if tick.Outcome != "hidden" || tick.App != "Terminal" {
		t.Fatalf("tick = %+v", tick)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Ticks != 1 || !status.SurfacesVisible || status.LastTick.Size != 30 {
		t.Fatalf("status = %+v", status)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", h.reloads)
	}
}

func TestServerReportsHandlerErrors(t *testing.T) {
	client := startServer(t, &fakeHandler{failTick: true})

	_, err := client.Tick()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "TICK failed") {
		t.Fatalf("error = %v", err)
	}
}

func TestServerRejectsUnknownCommand(t *testing.T) {
	client := startServer(t, &fakeHandler{})

	_, err := client.sendRequest(&Request{Command: "UNDO"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("error = %v, want unknown command", err)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	client := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	if _, err := client.GetStatus(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("error = %v", err)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"TICK"}` + "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Command != CommandTick {
		t.Fatalf("command = %q", req.Command)
	}
	if _, err := ParseRequest([]byte(`{}`)); err == nil {
		t.Fatal("expected error for missing command")
	}
	if _, err := ParseRequest([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
