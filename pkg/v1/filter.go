package v1

// Operation is a fallible unit of work. It is invoked exactly once per
// RunFiltered call; the harness never retries it.
type Operation func() error

// Classifier decides whether an observed failure is acceptable/non-critical.
// It must be total over errors and must not panic; a panicking classifier
// propagates to the caller and is treated as a contract violation.
type Classifier func(error) bool

// RunFiltered invokes op once and filters its failure through classify.
//
// If op succeeds, both results are nil and classify is never consulted.
// If op fails and classify accepts the failure, the failure is returned as
// recognized (same error value, not re-raised) so the caller can report it
// as a known non-critical condition. Otherwise the failure is returned as
// err, unchanged, for the caller to propagate.
func RunFiltered(op Operation, classify Classifier) (recognized, err error) {
	if failure := op(); failure != nil {
		if classify(failure) {
			return failure, nil
		}
		return nil, failure
	}
	return nil, nil
}

// RunSoft runs op tolerating known engine resource exhaustion. A recognized
// failure is logged as non-critical and returned for inspection; anything
// else comes back as a hard error.
func RunSoft(op Operation) (recognized, err error) {
	recognized, err = RunFiltered(op, IsKnownExhaustion)
	if recognized != nil {
		Log(LogTypeFilter, "Non-critical failure tolerated",
			"The engine ran out of a bounded resource; treating as a soft outcome: "+recognized.Error())
	}
	return recognized, err
}
