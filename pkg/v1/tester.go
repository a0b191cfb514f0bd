package v1

import (
	"fmt"
	"sync"
)

// StageFunc represents the function to be executed in a stage.
type StageFunc func()

// StageDef represents a defined stage.
type StageDef struct {
	Name string
	Func StageFunc
}

// StageStatus is the three-way outcome of a stage run.
type StageStatus string

const (
	StagePassed StageStatus = "PASSED"
	// StagePassedNonCritical means the stage failed with a failure the
	// tolerance filter recognized (e.g. engine resource exhaustion); the run
	// is reported as passed with a caveat instead of failed.
	StagePassedNonCritical StageStatus = "PASSED (non-critical)"
	StageFailed            StageStatus = "FAILED"
)

// StageResult reports the outcome of a single stage run. Recognized holds
// the tolerated failure when Status is StagePassedNonCritical.
type StageResult struct {
	Name       string
	Status     StageStatus
	Recognized error
}

// Action represents a runnable operation within a stage.
type Action struct {
	Summary string
	Func    func()
}

var (
	// stageActions maps StageName -> List of Actions
	stageActions = make(map[string][]Action)
	// currentStage tracks the currently running stage name
	currentStage string
	// isRecording determines if operations should be recorded
	isRecording bool
	// actionMu protects the global state
	actionMu sync.Mutex
	// actionHandlers are notified when actions list updates
	actionHandlers []func()
	// isDryRun indicates if the tester is in discovery mode
	isDryRun bool
)

// IsDryRun checks if the tester is in dry run mode.
func IsDryRun() bool {
	actionMu.Lock()
	defer actionMu.Unlock()
	return isDryRun
}

// RecordAction registers an operation for the current stage.
func RecordAction(summary string, fn func()) {
	actionMu.Lock()
	defer actionMu.Unlock()

	if !isRecording || currentStage == "" {
		return
	}

	stageActions[currentStage] = append(stageActions[currentStage], Action{
		Summary: summary,
		Func:    fn,
	})

	notifyActionHandlers()
}

// GetStageActions returns the recorded actions for a stage.
func GetStageActions(stageName string) []Action {
	actionMu.Lock()
	defer actionMu.Unlock()
	// Return copy to be safe
	src := stageActions[stageName]
	dst := make([]Action, len(src))
	copy(dst, src)
	return dst
}

// RegisterActionUpdateHandler adds a listener for action updates.
func RegisterActionUpdateHandler(fn func()) {
	actionMu.Lock()
	defer actionMu.Unlock()
	actionHandlers = append(actionHandlers, fn)
}

func notifyActionHandlers() {
	for _, h := range actionHandlers {
		h()
	}
}

// Tester is the main struct for the integration test library.
type Tester struct {
	Stages []StageDef

	mu       sync.Mutex
	tolerate Classifier
}

// NewTester creates a new Tester instance.
func NewTester() *Tester {
	return &Tester{
		Stages: make([]StageDef, 0),
	}
}

// Tolerate installs the tolerance filter applied to stage failures.
// A stage failure accepted by classify is reported as StagePassedNonCritical
// instead of failing the stage. Pass nil to clear it.
func (t *Tester) Tolerate(classify Classifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tolerate = classify
}

// Stage registers a new stage.
func (t *Tester) Stage(name string, fn StageFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Stages = append(t.Stages, StageDef{Name: name, Func: fn})
}

// RunStageByName runs a specific stage by name.
//
// The stage body signals failure by panicking (Fail/FailErr panic with
// TestError). The panic is recovered into an error and routed through
// RunFiltered with the installed tolerance filter: a recognized failure
// yields StagePassedNonCritical with a nil error, anything else fails the
// stage with the original failure preserved as the error cause.
func (t *Tester) RunStageByName(name string) (StageResult, error) {
	t.mu.Lock()
	var fn StageFunc
	for _, s := range t.Stages {
		if s.Name == name {
			fn = s.Func
			break
		}
	}
	classify := t.tolerate
	t.mu.Unlock()

	if fn == nil {
		return StageResult{Name: name, Status: StageFailed},
			fmt.Errorf("stage %s not found", name)
	}
	if classify == nil {
		classify = func(error) bool { return false }
	}

	// Setup context for recording
	actionMu.Lock()
	currentStage = name
	isRecording = true
	stageActions[name] = []Action{} // Clear previous actions
	notifyActionHandlers()
	actionMu.Unlock()

	Log(LogTypeStage, fmt.Sprintf("Running Stage: %s", name), "")

	// Ensure recording stops after stage
	defer func() {
		actionMu.Lock()
		isRecording = false
		currentStage = ""
		actionMu.Unlock()
	}()

	recognized, failure := RunFiltered(recoverable(fn), classify)
	switch {
	case failure != nil:
		Log(LogTypeStage, fmt.Sprintf("Stage %s FAILED", name), failure.Error())
		return StageResult{Name: name, Status: StageFailed},
			fmt.Errorf("failed: %w", failure)
	case recognized != nil:
		Log(LogTypeStage, fmt.Sprintf("Stage %s PASSED (non-critical)", name),
			fmt.Sprintf("Tolerated failure: %v", recognized))
		return StageResult{Name: name, Status: StagePassedNonCritical, Recognized: recognized}, nil
	default:
		Log(LogTypeStage, fmt.Sprintf("Stage %s PASSED", name), "")
		return StageResult{Name: name, Status: StagePassed}, nil
	}
}

// recoverable adapts a panic-style stage body to the Operation contract,
// turning a recovered panic into the error it carried.
func recoverable(fn StageFunc) Operation {
	return func() (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			switch v := r.(type) {
			case TestError:
				err = v
			case error:
				err = v
			default:
				err = fmt.Errorf("panic: %v", v)
			}
		}()
		fn()
		return nil
	}
}

// RunAll runs every registered stage in order and returns the results.
// It stops at the first hard failure; tolerated failures do not stop the run.
func (t *Tester) RunAll() ([]StageResult, error) {
	t.mu.Lock()
	names := make([]string, len(t.Stages))
	for i, s := range t.Stages {
		names[i] = s.Name
	}
	t.mu.Unlock()

	var results []StageResult
	for _, name := range names {
		res, err := t.RunStageByName(name)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// DryRunAll executes all stages in dry run mode to discover actions.
func (t *Tester) DryRunAll() {
	for _, s := range t.Stages {
		t.DryRunStage(s)
	}
}

// DryRunStage executes a single stage in dry run mode.
func (t *Tester) DryRunStage(s StageDef) {
	actionMu.Lock()
	currentStage = s.Name
	isRecording = true
	isDryRun = true
	stageActions[s.Name] = []Action{}
	actionMu.Unlock()

	defer func() {
		actionMu.Lock()
		isRecording = false
		isDryRun = false
		currentStage = ""
		actionMu.Unlock()
		// Catch panics during dry run
		recover()
	}()

	s.Func()
}
