package main

import (
	"context"
	"time"

	"github.com/artemstakhov/portfolio/internal/config"
	"github.com/artemstakhov/portfolio/internal/logging"
	"github.com/artemstakhov/portfolio/internal/session"
)

type submissionCleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
}

func announceAdmin(ctx context.Context, log logging.Logger, cfg *config.Config) {
	if cfg.AdminPassword == "" {
		log.Info(ctx, "admin login disabled, set PORTFOLIO_ADMIN_PASSWORD to enable it")
		return
	}
	log.Info(ctx, "admin access available", "path", "/admin/login", "user", cfg.AdminUsername)
	if cfg.HashSalt == "" {
		log.Warn(ctx, "hash salt is random, sender hashes change on restart")
	}
	log.Info(ctx, "privacy: contact attempts are logged with hashed IP addresses", "retention", cfg.Retention)
}

// runMaintenance drops submission records older than retention and idle form
// sessions, once at start and then every interval until ctx is done.
func runMaintenance(ctx context.Context, log logging.Logger, db submissionCleaner, sessions *session.Store, retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := db.Cleanup(ctx, retention)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error(ctx, "privacy cleanup failed", "error", err)
		case n > 0:
			log.Info(ctx, "privacy cleanup", "removed", n)
		}
		if swept := sessions.Sweep(); swept > 0 {
			log.Debug(ctx, "expired form sessions removed", "count", swept, "live", sessions.Len())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
