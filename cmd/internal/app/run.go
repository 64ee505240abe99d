package app

import (
	"context"
)

// Run is the entrypoint used by cmd/authsvc. It validates the security
// policy, builds the App and serves until ctx is canceled. It returns an
// error instead of calling os.Exit so deferred cleanup runs.
func Run(ctx context.Context, cfg Config, log Logger, version string) error {
	if err := ValidateSecurityConfig(cfg, log); err != nil {
		return err
	}

	a, err := New(ctx, cfg, log, WithVersion(version))
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
