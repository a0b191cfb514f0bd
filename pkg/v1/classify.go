package v1

import (
	"errors"
	"regexp"
	"strings"
)

// CauseChain returns err followed by its wrapped causes, in discovery order.
// It walks Unwrap() error links and descends into Unwrap() []error joins.
// A cause that was already seen terminates that branch of the walk, so
// self-referential chains never loop.
func CauseChain(err error) []error {
	var chain []error
	collectCauses(err, &chain)
	return chain
}

func collectCauses(err error, chain *[]error) {
	for err != nil {
		for _, seen := range *chain {
			if seen == err {
				return
			}
		}
		*chain = append(*chain, err)

		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, cause := range x.Unwrap() {
				collectCauses(cause, chain)
			}
			return
		default:
			return
		}
	}
}

// AnyCause builds a Classifier that accepts a failure if pred holds for the
// failure itself or any of its wrapped causes.
func AnyCause(pred func(error) bool) Classifier {
	return func(err error) bool {
		for _, cause := range CauseChain(err) {
			if pred(cause) {
				return true
			}
		}
		return false
	}
}

// MessageContains matches substr case-insensitively against the message of
// any cause in the chain.
func MessageContains(substr string) Classifier {
	needle := strings.ToLower(substr)
	return AnyCause(func(err error) bool {
		return strings.Contains(strings.ToLower(err.Error()), needle)
	})
}

// MessageMatches matches re against the message of any cause in the chain.
func MessageMatches(re *regexp.Regexp) Classifier {
	return AnyCause(func(err error) bool {
		return re.MatchString(err.Error())
	})
}

// CauseIs accepts failures whose chain contains target per errors.Is.
func CauseIs(target error) Classifier {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// AnyOf accepts a failure if any of the classifiers accepts it.
func AnyOf(classifiers ...Classifier) Classifier {
	return func(err error) bool {
		for _, c := range classifiers {
			if c(err) {
				return true
			}
		}
		return false
	}
}

// AllOf accepts a failure only if every classifier accepts it.
func AllOf(classifiers ...Classifier) Classifier {
	return func(err error) bool {
		for _, c := range classifiers {
			if !c(err) {
				return false
			}
		}
		return true
	}
}

// Not inverts a classifier.
func Not(c Classifier) Classifier {
	return func(err error) bool {
		return !c(err)
	}
}

var outOfSpaceRe = regexp.MustCompile(`(?i)out of space in \S+`)

// MatchesResourceExhaustion accepts failures caused by a bounded execution
// cache filling up, recognized by the "out of space in <cache>" phrasing
// anywhere in the cause chain (e.g. "Out of space in CodeCache").
var MatchesResourceExhaustion Classifier = MessageMatches(outOfSpaceRe)

// IsRedisOOM accepts failures caused by Redis hitting its maxmemory limit.
var IsRedisOOM Classifier = MessageContains("OOM command not allowed")

// IsSQLiteFull accepts failures caused by SQLITE_FULL (no space left for
// the database file).
var IsSQLiteFull Classifier = MessageContains("database or disk is full")

// IsOracleExhaustion accepts failures caused by Oracle running out of
// shared pool memory (ORA-04031) or session slots (ORA-00020).
var IsOracleExhaustion Classifier = AnyOf(
	MessageContains("ORA-04031"),
	MessageContains("ORA-00020"),
)

// IsKnownExhaustion is the default tolerance filter: every engine
// resource-exhaustion condition this library knows how to recognize.
var IsKnownExhaustion Classifier = AnyOf(
	MatchesResourceExhaustion,
	IsRedisOOM,
	IsSQLiteFull,
	IsOracleExhaustion,
)
