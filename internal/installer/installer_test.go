package installer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func satisfied(context.Context) (bool, error)   { return true, nil }
func unsatisfied(context.Context) (bool, error) { return false, nil }

func TestRunnerSkipsSatisfiedSteps(t *testing.T) {
	ran := false
	runner := NewRunner([]Step{
		{Name: "present", Check: satisfied, Run: func(context.Context) error { ran = true; return nil }},
	}, false)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ran, "satisfied steps must not run")
	assert.Equal(t, []string{"present"}, summary.Skipped)
	assert.NotEmpty(t, summary.RunID)
}

func TestRunnerRunsInOrderAndStopsOnRequiredFailure(t *testing.T) {
	var order []string
	runner := NewRunner([]Step{
		{Name: "one", Check: unsatisfied, Run: func(context.Context) error { order = append(order, "one"); return nil }},
		{Name: "two", Check: unsatisfied, Run: func(context.Context) error { return errors.New("boom") }},
		{Name: "three", Check: unsatisfied, Run: func(context.Context) error { order = append(order, "three"); return nil }},
	}, false)

	summary, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two")
	assert.Equal(t, []string{"one"}, order, "a failed required step aborts the rest")
	assert.Equal(t, []string{"one"}, summary.Completed)
}

func TestRunnerCollectsOptionalFailuresAsWarnings(t *testing.T) {
	runner := NewRunner([]Step{
		{Name: "python:pandas", Optional: true, Check: unsatisfied,
			Run: func(context.Context) error { return errors.New("pip exploded") }},
		{Name: "after", Check: unsatisfied, Run: func(context.Context) error { return nil }},
	}, false)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err, "optional failures never abort the run")
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, "python:pandas", summary.Warnings[0].Step)
	assert.Equal(t, []string{"after"}, summary.Completed)
}

func TestRunnerCheckOnly(t *testing.T) {
	ran := false
	runner := NewRunner([]Step{
		{Name: "present", Check: satisfied, Run: func(context.Context) error { ran = true; return nil }},
		{Name: "absent", Check: unsatisfied, Run: func(context.Context) error { ran = true; return nil }},
		{Name: "optional-absent", Optional: true, Check: unsatisfied, Run: func(context.Context) error { ran = true; return nil }},
	}, true)

	summary, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrMissingRequired)
	assert.False(t, ran, "check-only never installs")
	assert.Equal(t, []string{"absent", "optional-absent"}, summary.Missing)
}

func TestRunnerCheckOnlyAllPresent(t *testing.T) {
	runner := NewRunner([]Step{
		{Name: "a", Check: satisfied},
		{Name: "b", Check: satisfied},
	}, true)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Missing)
}
