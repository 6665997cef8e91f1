// File: internal/jobs/token_cleanup.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"unihomes_backend/internal/config"
	"unihomes_backend/internal/user"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const tokenCleanupTimeout = 5 * time.Minute

// TokenCleanupJob periodically clears expired email verification and password
// reset tokens from the users table.
type TokenCleanupJob struct {
	userService   *user.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewTokenCleanupJob creates a new TokenCleanupJob.
func NewTokenCleanupJob(userService *user.Service, logger *zap.Logger, cfg *config.Config) *TokenCleanupJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))
	return &TokenCleanupJob{
		userService:   userService,
		logger:        logger.Named("TokenCleanupJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *TokenCleanupJob) SetupAndStart() error {
	jobSpec := j.cfg.CredentialTokenCleanupCron
	if jobSpec == "" {
		j.logger.Warn("Token cleanup schedule not defined (CREDENTIAL_TOKEN_CLEANUP_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule token cleanup job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Token cleanup job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *TokenCleanupJob) runJob() {
	j.logger.Info("Starting token cleanup run...")
	ctx, cancel := context.WithTimeout(context.Background(), tokenCleanupTimeout)
	defer cancel()

	cleared, err := j.userService.ClearExpiredCredentialTokens(ctx)
	if err != nil {
		j.logger.Error("Token cleanup run failed", zap.Error(err))
		return
	}
	j.logger.Info("Token cleanup run completed", zap.Int64("tokens_cleared", cleared))
}

// Stop gracefully stops the cron scheduler.
func (j *TokenCleanupJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping token cleanup scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Token cleanup scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Token cleanup scheduler stop timed out.")
	}
}

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
