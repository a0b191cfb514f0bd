package v1

import (
	"fmt"
	"os"
	"os/exec"
)

// AppServer represents a running application under test.
type AppServer struct {
	cmd *exec.Cmd
}

// RunAppServer starts the application under test.
func RunAppServer(path string, args ...string) (*AppServer, error) {
	RecordAction(fmt.Sprintf("App Start: %s", path), func() { RunAppServer(path, args...) })
	if IsDryRun() {
		return &AppServer{}, nil
	}
	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	Logf(LogTypeApp, "Starting Server: %s %v", path, args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	return &AppServer{cmd: cmd}, nil
}

// MustRunAppServer starts the application and fails the stage on error.
func MustRunAppServer(path string, args ...string) *AppServer {
	s, err := RunAppServer(path, args...)
	if err != nil {
		FailErr(err, "Failed to start app server")
	}
	return s
}

// Wait blocks until the application exits and returns its exit failure, if
// any, for classification (an engine process dying of resource exhaustion
// surfaces here).
func (s *AppServer) Wait() error {
	if s.cmd == nil {
		return nil
	}
	Log(LogTypeApp, "Waiting for app to exit", "")
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("app exited: %w", err)
	}
	return nil
}

// Stop stops the application server.
func (s *AppServer) Stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		Log(LogTypeApp, "Stopping Server", "")
		s.cmd.Process.Kill()
		s.cmd.Wait() // release resources
	}
}
