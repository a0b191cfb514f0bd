package v1

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisHelpers(t *testing.T) {
	// start in-memory redis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := ConnectRedis(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := client.Set("foo", "bar", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	client.ExpectValue("foo", "bar")

	if err := client.Set("num", 123, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, err := client.Get("num"); err != nil || got != "123" {
		t.Fatalf("expected num=123, got %q (err=%v)", got, err)
	}

	if err := client.Del("foo"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := mr.Get("foo"); err == nil {
		t.Fatalf("expected foo to be deleted")
	}

	// Missing key surfaces as an error, not a stage failure.
	if _, err := client.Get("foo"); err == nil {
		t.Fatalf("expected error for missing key")
	}

	if err := client.FlushAll(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected empty db after flush, got %v", keys)
	}
}

func TestRedisFill(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := ConnectRedis(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := client.Fill("fill", 10, 64); err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if got, err := client.Get("fill:9"); err != nil || len(got) != 64 {
		t.Fatalf("expected 64-byte payload at fill:9, got %d bytes (err=%v)", len(got), err)
	}
}

func TestRedisConnectFailureNotExhaustion(t *testing.T) {
	// A refused connection must propagate as a hard failure: the tolerance
	// filter only recognizes engine resource exhaustion.
	_, err := ConnectRedis("127.0.0.1:1", "", 0)
	if err == nil {
		t.Fatal("expected connection failure")
	}
	if IsKnownExhaustion(err) {
		t.Errorf("connection failure misclassified as exhaustion: %v", err)
	}
}
