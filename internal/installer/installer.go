package installer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Step is one idempotent unit of the install flow. Check reports whether
// the step is already satisfied; Run makes it so. Optional steps degrade
// to warnings instead of aborting the run.
type Step struct {
	Name     string
	Detail   string
	Optional bool
	Check    func(ctx context.Context) (bool, error)
	Run      func(ctx context.Context) error
}

// Warning records a best-effort step that failed without aborting the run.
type Warning struct {
	Step   string
	Reason string
}

// Summary is the run-end report: what ran, what was already in place, what
// is still missing (check-only mode), and which optional steps failed.
type Summary struct {
	RunID     string
	Completed []string
	Skipped   []string
	Missing   []string
	Warnings  []Warning
}

// Runner executes steps strictly in order, one at a time. There is no
// retry anywhere: a transient failure is fatal for that invocation and the
// operator re-runs.
type Runner struct {
	steps     []Step
	checkOnly bool
}

// NewRunner creates a runner over the given steps. With checkOnly the
// runner only reports which steps are unsatisfied.
func NewRunner(steps []Step, checkOnly bool) *Runner {
	return &Runner{steps: steps, checkOnly: checkOnly}
}

// Run executes the steps. The returned summary is valid even when err is
// non-nil (it covers everything up to the failure). In check-only mode a
// missing required step yields ErrMissingRequired.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	log := slog.With("run_id", summary.RunID)

	missingRequired := false
	for _, step := range r.steps {
		satisfied, err := step.Check(ctx)
		if err != nil {
			if step.Optional {
				log.Warn("step check failed, continuing", "step", step.Name, "error", err)
				summary.Warnings = append(summary.Warnings, Warning{Step: step.Name, Reason: err.Error()})
				continue
			}
			return summary, errors.Wrapf(err, "checking %s", step.Name)
		}
		if satisfied {
			log.Debug("already installed, skipping", "step", step.Name)
			summary.Skipped = append(summary.Skipped, step.Name)
			continue
		}

		if r.checkOnly {
			log.Info("missing", "step", step.Name, "detail", step.Detail)
			summary.Missing = append(summary.Missing, step.Name)
			if !step.Optional {
				missingRequired = true
			}
			continue
		}

		log.Info("installing", "step", step.Name, "detail", step.Detail)
		if err := step.Run(ctx); err != nil {
			if step.Optional {
				log.Warn("optional step failed, continuing", "step", step.Name, "error", err)
				summary.Warnings = append(summary.Warnings, Warning{Step: step.Name, Reason: err.Error()})
				continue
			}
			return summary, errors.Wrapf(err, "installing %s", step.Name)
		}
		summary.Completed = append(summary.Completed, step.Name)
	}

	if missingRequired {
		return summary, ErrMissingRequired
	}
	return summary, nil
}

// ErrMissingRequired is returned in check-only mode when a required step
// is unsatisfied; the CLI maps it to exit code 1.
var ErrMissingRequired = errors.New("required components are missing")
