package v1

import (
	"fmt"
	"net/http"
	"sync"
)

// FaultHandlerFunc defines the handler function signature.
type FaultHandlerFunc func(Request) Response

// FaultServer is an in-process HTTP server whose per-path handlers script
// the behavior of an external engine, including its failure modes. Stages
// point the system under test (or SendRequest) at it and use the tolerance
// filter to classify the injected failures.
type FaultServer struct {
	server   *http.Server
	handlers map[string]FaultHandlerFunc
	mu       sync.RWMutex
}

// ServeExhaustion returns a handler that always answers with an
// engine-exhaustion failure carrying the given message, e.g.
// "Out of space in CodeCache".
func ServeExhaustion(message string) FaultHandlerFunc {
	return func(Request) Response {
		return NewResponse(http.StatusInsufficientStorage, message)
	}
}

// RunFaultServer starts a fault server on the specified port with given handlers.
// port can be ":8080" or just "8080".
func RunFaultServer(port string, handlers map[string]FaultHandlerFunc) *FaultServer {
	if len(port) > 0 && port[0] != ':' {
		port = ":" + port
	}

	fs := &FaultServer{
		handlers: handlers,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", fs.handle)

	fs.server = &http.Server{
		Addr:    port,
		Handler: mux,
	}

	go func() {
		Logf(LogTypeMock, "Starting fault server on %s", port)
		if err := fs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log(LogTypeMock, "Fault server failed", fmt.Sprintf("%v", err))
		}
	}()

	return fs
}

// Update merges handlers into the running server, overwriting paths that
// already exist. Paths not mentioned keep their previous behavior, so a
// stage can flip a single endpoint from healthy to exhausted.
func (fs *FaultServer) Update(handlers map[string]FaultHandlerFunc) {
	Log(LogTypeMock, "Updating fault server handlers", "")
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.handlers == nil {
		fs.handlers = make(map[string]FaultHandlerFunc)
	}
	for k, v := range handlers {
		fs.handlers[k] = v
	}
}

func (fs *FaultServer) handle(w http.ResponseWriter, r *http.Request) {
	fs.mu.RLock()
	handler, ok := fs.handlers[r.URL.Path]
	fs.mu.RUnlock()

	if !ok {
		Logf(LogTypeMock, "Handled Request: %s %s -> 404 Not Found", r.Method, r.URL.Path)
		http.NotFound(w, r)
		return
	}

	reqWrapper := NewRequestWrapper(r)
	resp := handler(reqWrapper)

	Log(LogTypeMock, fmt.Sprintf("Handled Request: %s %s -> %d", r.Method, r.URL.Path, resp.StatusCode), fmt.Sprintf("Response Body: %s\nHeaders: %v", resp.Body, resp.Header))

	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
}

// Stop stops the fault server.
func (fs *FaultServer) Stop() {
	if fs.server != nil {
		fs.server.Close()
	}
}
