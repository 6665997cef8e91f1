// File: cmd/server/providers.go
package main

import (
	"log"
	"time"

	"unihomes_backend/internal/auth"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/platform/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideBlocklistConfig sizes the refresh-token blocklist cache to the
// refresh token lifetime; entries never need to outlive their token.
func provideBlocklistConfig(cfg *config.Config) auth.InMemoryBlocklistConfig {
	return auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.JWTRefreshTokenExpiry,
		CleanupInterval:   1 * time.Hour,
	}
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
