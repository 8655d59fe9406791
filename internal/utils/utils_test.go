package utils

import (
	"crypto/tls"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "gen")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	got := BuildPostgresDSNFromEnv()
	want := "postgres://gen:secret@db:6543/neurosphere?sslmode=disable"
	if got != want {
		t.Fatalf("dsn %q, want %q", got, want)
	}
}

func TestOpenRedisFromEnvDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")
	if OpenRedisFromEnv() != nil {
		t.Fatal("expected nil client when redis is disabled")
	}
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	if err := EnsureSelfSignedCert(cert, key, "planetd.local"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	pair, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		t.Fatalf("load pair: %v", err)
	}
	if len(pair.Certificate) == 0 {
		t.Fatal("empty certificate chain")
	}
	if err := EnsureSelfSignedCert(cert, key, "other"); err != nil {
		t.Fatalf("second call should be a no-op: %v", err)
	}
	if !strings.HasSuffix(cert, "server.crt") {
		t.Fatal("unexpected path")
	}
}
