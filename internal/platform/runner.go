package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Runner runs preparers for a set of platforms.
type Runner struct {
	registry RegistryInterface
	logger   *slog.Logger
}

// NewRunner creates a runner over the registry.
func NewRunner(registry RegistryInterface, logger *slog.Logger) *Runner {
	return &Runner{registry: registry, logger: logger}
}

// Platforms resolves the platforms to act on. With no explicit names it
// returns every registered platform whose native project exists.
func (r *Runner) Platforms(p *Project, names []string) ([]string, error) {
	if len(names) > 0 {
		for _, name := range names {
			if r.registry.Get(name) == nil {
				return nil, fmt.Errorf("unknown platform %q", name)
			}
		}
		return names, nil
	}

	var installed []string
	for _, name := range r.registry.Names() {
		if info, err := os.Stat(p.PlatformDir(name)); err == nil && info.IsDir() {
			installed = append(installed, name)
		}
	}
	return installed, nil
}

// Prepare runs Prepare for each platform. A failing platform does not stop
// the others; all failures are returned joined.
func (r *Runner) Prepare(ctx context.Context, p *Project, names []string) error {
	return r.run(ctx, p, names, "prepare", Preparer.Prepare)
}

// Clean runs Clean for each platform with the same failure handling as Prepare.
func (r *Runner) Clean(ctx context.Context, p *Project, names []string) error {
	return r.run(ctx, p, names, "clean", Preparer.Clean)
}

func (r *Runner) run(
	ctx context.Context,
	p *Project,
	names []string,
	op string,
	fn func(Preparer, context.Context, *Project) error,
) error {
	platforms, err := r.Platforms(p, names)
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		r.logger.Warn("no platforms to "+op, "platformsDir", p.PlatformsDir)
		return nil
	}

	r.logger.Info("starting "+op, "platforms", platforms)
	startTime := time.Now()

	var errs []error
	for _, name := range platforms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r.registry.Get(name), ctx, p); err != nil {
			r.logger.Warn(op+" failed", "platform", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		r.logger.Debug(op+" complete", "platform", name)
	}

	r.logger.Info(op+" finished",
		"platforms", len(platforms),
		"failed", len(errs),
		"duration", time.Since(startTime),
	)
	return errors.Join(errs...)
}
