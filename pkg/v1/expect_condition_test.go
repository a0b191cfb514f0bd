package v1

import "testing"

func TestEvaluateCondition(t *testing.T) {
	cases := []struct {
		actual    interface{}
		condition string
		expected  interface{}
		want      bool
	}{
		{1, ConditionEqual, 1, true},
		{int64(30), ConditionEqual, 30, true}, // cross-width numeric equality
		{1, ConditionEqual, 2, false},
		{nil, ConditionEqual, nil, true},
		{nil, ConditionEqual, 1, false},
		{1, ConditionNotEqual, 2, true},
		{5, ConditionGreaterThan, 3, true},
		{3, ConditionGreaterThan, 5, false},
		{3, ConditionLessThan, 5, true},
		{5, ConditionGreaterThanOrEqual, 5, true},
		{5, ConditionLessThanOrEqual, 5, true},
		{"hello world", ConditionContains, "world", true},
		{"hello world", ConditionNotContains, "xyz", true},
		{"hello", ConditionStartsWith, "he", true},
		{"hello", ConditionEndsWith, "lo", true},
		{"hello", ConditionEndsWith, "he", false},
		{"a", "no_such_condition", "a", false},
	}

	for _, c := range cases {
		if got := evaluateCondition(c.actual, c.condition, c.expected); got != c.want {
			t.Errorf("evaluateCondition(%v, %s, %v) = %v, want %v", c.actual, c.condition, c.expected, got, c.want)
		}
	}
}
