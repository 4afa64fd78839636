// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/geogroups/internal/app/resources"
	auditstore "github.com/dalemusser/geogroups/internal/app/store/audit"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/auditlog"
	"github.com/dalemusser/geogroups/internal/app/system/mailer"
	"github.com/dalemusser/geogroups/internal/app/system/ratelimit"
	"github.com/dalemusser/geogroups/internal/app/system/search"
	"github.com/dalemusser/geogroups/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: shared
// templates, the seed account, the search index and background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if err := ensureSeedUser(ctx, deps, appCfg, logger); err != nil {
		return err
	}

	idx, err := search.Open(appCfg.SearchIndexPath, logger)
	if err != nil {
		return err
	}
	groups := groupstore.New(deps.MongoDatabase)
	if err := rebuildIndex(ctx, groups, idx); err != nil {
		_ = idx.Close()
		return err
	}

	svc := deps.Services
	svc.Index = idx
	svc.Mailer = mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	if !svc.Mailer.Enabled() {
		logger.Info("mail_smtp_host not set; invitation e-mails are disabled")
	}
	svc.Audit = auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Group: appCfg.AuditLogGroup,
	})
	svc.Limiter = ratelimit.NewLoginLimiter()

	var jobs []tasks.Job
	if appCfg.SearchResyncInterval > 0 {
		jobs = append(jobs, tasks.SearchResyncJob(groups, idx, logger, appCfg.SearchResyncInterval))
	}
	svc.Tasks = tasks.NewRunner(logger, jobs...)
	// Jobs outlive Startup's ctx; Shutdown stops them.
	svc.Tasks.Start(context.Background())

	return nil
}

func rebuildIndex(ctx context.Context, groups *groupstore.Store, idx *search.GroupIndex) error {
	all, err := groups.All(ctx)
	if err != nil {
		return fmt.Errorf("load groups for search index: %w", err)
	}
	return idx.Rebuild(all)
}

// ensureSeedUser creates the configured first account when it is missing.
// It never changes the password of an existing account.
func ensureSeedUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.SeedUsername == "" {
		return nil
	}
	created, err := userstore.New(deps.MongoDatabase).EnsureSeed(ctx, appCfg.SeedUsername, appCfg.SeedPassword)
	if err != nil {
		return fmt.Errorf("seed user %q: %w", appCfg.SeedUsername, err)
	}
	if created {
		logger.Info("created seed user", zap.String("username", appCfg.SeedUsername))
	}
	return nil
}
