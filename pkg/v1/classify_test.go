package v1

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
)

func TestCauseChainWalk(t *testing.T) {
	root := errors.New("Out of space in CodeCache")
	mid := fmt.Errorf("method handle test: %w", root)
	top := fmt.Errorf("stage run: %w", mid)

	chain := CauseChain(top)
	if len(chain) != 3 {
		t.Fatalf("Expected chain of 3, got %d: %v", len(chain), chain)
	}
	if chain[0] != top || chain[2] != root {
		t.Errorf("Chain order wrong: %v", chain)
	}

	if !MessageContains("codecache")(top) {
		t.Error("Deepest cause should be reachable through the chain")
	}
}

// loopErr unwraps to a fixed next error, allowing cause cycles.
type loopErr struct {
	msg  string
	next error
}

func (e *loopErr) Error() string { return e.msg }
func (e *loopErr) Unwrap() error { return e.next }

func TestCauseChainCycleTerminates(t *testing.T) {
	a := &loopErr{msg: "a"}
	b := &loopErr{msg: "b", next: a}
	a.next = b // a -> b -> a -> ...

	chain := CauseChain(a)
	if len(chain) != 2 {
		t.Fatalf("Expected 2 distinct causes, got %d", len(chain))
	}

	// A classifier over the cyclic chain must terminate and report no match.
	if MessageContains("codecache")(a) {
		t.Error("No cause matches; classifier should return false")
	}
}

func TestCauseChainSelfReference(t *testing.T) {
	a := &loopErr{msg: "self"}
	a.next = a

	chain := CauseChain(a)
	if len(chain) != 1 {
		t.Fatalf("Expected 1 cause for self-referential chain, got %d", len(chain))
	}
}

func TestCauseChainJoined(t *testing.T) {
	exhaustion := errors.New("ORA-04031: unable to allocate shared memory")
	joined := errors.Join(errors.New("timeout"), fmt.Errorf("db: %w", exhaustion))

	if !IsOracleExhaustion(joined) {
		t.Error("Exhaustion inside a joined error should be found")
	}
}

func TestMatchesResourceExhaustion(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"Out of space in CodeCache", true},
		{"out of space in CodeCache", true},
		{"run failed: Out of space in MetaspaceCache", true},
		{"nil pointer dereference", false},
		{"out of memory", false},
	}

	for _, c := range cases {
		if got := MatchesResourceExhaustion(errors.New(c.msg)); got != c.want {
			t.Errorf("MatchesResourceExhaustion(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}

func TestEngineClassifiers(t *testing.T) {
	if !IsRedisOOM(errors.New("OOM command not allowed when used memory > 'maxmemory'")) {
		t.Error("Redis maxmemory refusal should be recognized")
	}
	if !IsSQLiteFull(errors.New("database or disk is full")) {
		t.Error("SQLITE_FULL should be recognized")
	}
	if !IsOracleExhaustion(errors.New("ORA-04031: unable to allocate 4096 bytes")) {
		t.Error("ORA-04031 should be recognized")
	}
	if !IsOracleExhaustion(errors.New("ORA-00020: maximum number of processes exceeded")) {
		t.Error("ORA-00020 should be recognized")
	}

	for _, err := range []error{
		errors.New("Out of space in CodeCache"),
		errors.New("OOM command not allowed"),
		errors.New("database or disk is full"),
		errors.New("ORA-04031: out of shared pool"),
	} {
		if !IsKnownExhaustion(err) {
			t.Errorf("IsKnownExhaustion should cover %v", err)
		}
	}
	if IsKnownExhaustion(errors.New("connection refused")) {
		t.Error("Connection failures are not exhaustion")
	}
}

func TestCombinators(t *testing.T) {
	yes := Classifier(func(error) bool { return true })
	no := Classifier(func(error) bool { return false })
	err := errors.New("x")

	if !AnyOf(no, yes)(err) || AnyOf(no, no)(err) {
		t.Error("AnyOf misbehaved")
	}
	if !AllOf(yes, yes)(err) || AllOf(yes, no)(err) {
		t.Error("AllOf misbehaved")
	}
	if Not(yes)(err) || !Not(no)(err) {
		t.Error("Not misbehaved")
	}
}

func TestCauseIs(t *testing.T) {
	sentinel := errors.New("cache full")
	wrapped := TestError{Message: "stage", Err: fmt.Errorf("probe: %w", sentinel)}

	if !CauseIs(sentinel)(wrapped) {
		t.Error("CauseIs should see through TestError and fmt wrapping")
	}
	if CauseIs(sentinel)(errors.New("other")) {
		t.Error("CauseIs matched an unrelated failure")
	}
}

func TestMessageMatches(t *testing.T) {
	re := regexp.MustCompile(`ORA-\d{5}`)
	if !MessageMatches(re)(fmt.Errorf("wrap: %w", errors.New("ORA-00955: name already used"))) {
		t.Error("Regexp should match a wrapped cause")
	}
	if MessageMatches(re)(errors.New("no oracle here")) {
		t.Error("Regexp matched an unrelated message")
	}
}
