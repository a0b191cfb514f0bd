package v1

import "fmt"

// TestError represents a controlled test failure. Err carries the underlying
// failure (if any) so tolerance classifiers can inspect the full cause chain.
type TestError struct {
	Message string
	Err     error
}

func (e TestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e TestError) Unwrap() error {
	return e.Err
}

// Fail fails the current test stage with a message.
// It uses panic with TestError to stop execution, which is caught by the Stage runner.
func Fail(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	Log(LogTypeError, "Assertion FAILED", msg)
	panic(TestError{Message: msg})
}

// FailErr fails the current test stage, preserving err as the cause so that
// the stage tolerance filter can still classify the underlying failure.
func FailErr(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	Log(LogTypeError, "Assertion FAILED", fmt.Sprintf("%s: %v", msg, err))
	panic(TestError{Message: msg, Err: err})
}

// Assert checks if the condition is true. If not, it fails the test stage.
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		Fail(format, args...)
	}
}

// AssertNoError asserts that the error is nil.
func AssertNoError(err error) {
	if err != nil {
		FailErr(err, "Unexpected error")
	}
}
