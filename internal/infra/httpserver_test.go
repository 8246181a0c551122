package infra

import (
	"net/http"
	"testing"
	"time"
)

func TestHTTPServerAddr(t *testing.T) {
	cfg := &Config{
		Port:             "9090",
		HTTPReadTimeout:  time.Second,
		HTTPWriteTimeout: time.Second,
		HTTPIdleTimeout:  time.Second,
	}
	srv := NewHTTPServer(cfg, http.NewServeMux())
	if got := srv.Addr(); got != ":9090" {
		t.Fatalf("Addr() = %q, want :9090", got)
	}
}
