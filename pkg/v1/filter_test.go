package v1

import (
	"errors"
	"fmt"
	"testing"
)

func TestRunFilteredSuccess(t *testing.T) {
	classifierCalled := false
	recognized, err := RunFiltered(func() error { return nil }, func(error) bool {
		classifierCalled = true
		return true
	})

	if recognized != nil || err != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", recognized, err)
	}
	if classifierCalled {
		t.Error("Classifier must not be consulted when the operation succeeds")
	}
}

func TestRunFilteredRecognized(t *testing.T) {
	failure := errors.New("Out of space in CodeCache")
	recognized, err := RunFiltered(func() error { return failure }, func(error) bool { return true })

	if err != nil {
		t.Errorf("Recognized failure must not propagate, got %v", err)
	}
	if recognized != failure {
		t.Errorf("Expected the same failure value back, got %v", recognized)
	}
}

func TestRunFilteredPropagates(t *testing.T) {
	failure := errors.New("nil dereference")
	recognized, err := RunFiltered(func() error { return failure }, func(error) bool { return false })

	if recognized != nil {
		t.Errorf("Unmatched failure must not be returned as recognized, got %v", recognized)
	}
	if err != failure {
		t.Errorf("Expected the same failure value to propagate, got %v", err)
	}
}

func TestRunFilteredRunsOnce(t *testing.T) {
	runs := 0
	_, _ = RunFiltered(func() error {
		runs++
		return errors.New("boom")
	}, func(error) bool { return false })

	if runs != 1 {
		t.Errorf("Expected exactly 1 run, got %d", runs)
	}
}

func TestRunFilteredClassifierPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("A panicking classifier must propagate")
		}
	}()

	RunFiltered(func() error { return errors.New("boom") }, func(error) bool {
		panic("classifier misuse")
	})
}

func TestRunSoft(t *testing.T) {
	// Recognized exhaustion comes back without propagating.
	exhaustion := fmt.Errorf("compile step: %w", errors.New("Out of space in CodeCache"))
	recognized, err := RunSoft(func() error { return exhaustion })
	if err != nil {
		t.Errorf("Exhaustion should be tolerated, got %v", err)
	}
	if recognized != exhaustion {
		t.Errorf("Expected the exhaustion failure back, got %v", recognized)
	}

	// Anything else propagates.
	unrelated := errors.New("connection reset by peer")
	recognized, err = RunSoft(func() error { return unrelated })
	if recognized != nil {
		t.Errorf("Unrelated failure must not be recognized, got %v", recognized)
	}
	if err != unrelated {
		t.Errorf("Expected the unrelated failure to propagate, got %v", err)
	}
}
