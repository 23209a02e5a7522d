package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/remote"
)

// Verifier installs and builds a materialized tree.
type Verifier interface {
	Verify(ctx context.Context, dir string) error
}

// CommandVerifier runs the configured install and build commands in dir.
type CommandVerifier struct {
	runner  remote.Runner
	install string
	build   string
	timeout time.Duration
}

func NewCommandVerifier(runner remote.Runner, install, build string, timeout time.Duration) *CommandVerifier {
	return &CommandVerifier{runner: runner, install: install, build: build, timeout: timeout}
}

func (v *CommandVerifier) Verify(ctx context.Context, dir string) error {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	for _, command := range []string{v.install, v.build} {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			continue
		}
		logger.Info("Running %s", command)
		if _, err := v.runner.Run(ctx, dir, fields[0], fields[1:]...); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("%s timed out after %s: %w", command, v.timeout, err)
			}
			return fmt.Errorf("%s: %w", command, err)
		}
	}
	return nil
}
