package installer

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// PythonPackageSteps returns one best-effort step per auxiliary Python
// package. A failed pip install never aborts the run; it lands in the
// run-end warning summary instead.
func PythonPackageSteps(packages []string) []Step {
	steps := make([]Step, 0, len(packages))
	for _, pkg := range packages {
		steps = append(steps, pythonPackageStep(pkg))
	}
	return steps
}

func pythonPackageStep(pkg string) Step {
	return Step{
		Name:     "python:" + pkg,
		Detail:   "pip install --user " + pkg,
		Optional: true,
		Check: func(ctx context.Context) (bool, error) {
			err := exec.CommandContext(ctx, "python3", "-m", "pip", "show", "-q", pkg).Run()
			return err == nil, nil
		},
		Run: func(ctx context.Context) error {
			out, err := exec.CommandContext(ctx, "python3", "-m", "pip", "install", "--user", pkg).CombinedOutput()
			if err != nil {
				return errors.Wrapf(err, "pip install %s: %s", pkg, out)
			}
			return nil
		},
	}
}
