package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"
)

func TestServerStartAndGracefulShutdown(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERISIM_SHOWROOM_DB_PATH", filepath.Join(dir, "showroom.db"))
	t.Setenv("VERISIM_SHOWROOM_UPLOADS_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("VERISIM_AUTH_TOKEN_SECRET", "test-secret")

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	url := fmt.Sprintf("http://%s/health", server.Addr())
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server stopped with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewWithAddrRejectsBadAddress(t *testing.T) {
	if _, err := NewWithAddr("not-an-address"); err == nil {
		t.Fatal("expected listen error")
	}
}
