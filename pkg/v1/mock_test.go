package v1

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestFaultServer(t *testing.T) {
	port := "8999"

	handlers := map[string]FaultHandlerFunc{
		"/cache/put": func(req Request) Response {
			return NewResponse(200, `{"status":"stored"}`)
		},
	}

	fs := RunFaultServer(port, handlers)
	defer fs.Stop()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%s/cache/put", port))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != `{"status":"stored"}` {
		t.Errorf("Unexpected body: %s", body)
	}

	// Unknown path is a 404.
	resp, _ = http.Get(fmt.Sprintf("http://localhost:%s/nope", port))
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}

	// Flip the endpoint to exhaustion; other paths keep their behavior.
	fs.Update(map[string]FaultHandlerFunc{
		"/cache/put": ServeExhaustion("Out of space in CodeCache"),
		"/health":    func(Request) Response { return NewResponse(200, "ok") },
	})

	wrapped, err := SendRequest(fmt.Sprintf("http://localhost:%s/cache/put", port))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if wrapped.StatusCode != http.StatusInsufficientStorage {
		t.Errorf("Expected 507, got %d", wrapped.StatusCode)
	}

	failure := wrapped.Err()
	if failure == nil {
		t.Fatal("Expected a failure for the exhausted endpoint")
	}
	if !MatchesResourceExhaustion(failure) {
		t.Errorf("Injected exhaustion should be recognized: %v", failure)
	}

	healthy, err := SendRequest(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if healthy.Err() != nil {
		t.Errorf("Healthy endpoint must not produce a failure: %v", healthy.Err())
	}
}
