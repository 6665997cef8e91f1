// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"unihomes_backend/internal/admin"
	"unihomes_backend/internal/agent"
	"unihomes_backend/internal/app"
	"unihomes_backend/internal/auth"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/jobs"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/notification"
	"unihomes_backend/internal/payment"
	"unihomes_backend/internal/platform/database"
	"unihomes_backend/internal/platform/elasticsearch"
	"unihomes_backend/internal/platform/logger"
	"unihomes_backend/internal/roommate"
	"unihomes_backend/internal/shared"
	"unihomes_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform layer
		logger.New,
		database.NewGORM,
		elasticsearch.NewClient,
		provideCleanup,

		// Sessions
		provideBlocklistConfig,
		auth.NewInMemoryBlocklistService,
		wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
		auth.NewJWTService,

		// Notifications
		notification.NewGORMRepository,
		notification.NewSMTPMailer,
		notification.NewService,
		notification.NewDispatcher,
		wire.Bind(new(shared.EventDispatcher), new(notification.Dispatcher)),
		notification.NewHandler,

		// Domain services
		listing.NewGORMRepository,
		listing.NewService,
		roommate.NewGORMRepository,
		roommate.NewService,
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.Service)),
		wire.Bind(new(auth.UserProvider), new(*user.Service)),
		wire.Bind(new(user.ListingChecker), new(*listing.Service)),
		wire.Bind(new(user.RoommateChecker), new(*roommate.Service)),
		payment.NewGORMRepository,
		payment.NewService,
		wire.Bind(new(payment.ListingProvider), new(*listing.Service)),
		wire.Bind(new(payment.UnlockGranter), new(*user.Service)),

		// Dashboards
		admin.NewService,
		wire.Bind(new(admin.UserDirectory), new(*user.Service)),
		wire.Bind(new(admin.ListingCounter), new(*listing.Service)),
		wire.Bind(new(admin.PaymentCounter), new(*payment.Service)),
		agent.NewService,
		wire.Bind(new(agent.ListingStats), new(*listing.Service)),
		wire.Bind(new(agent.PaymentStats), new(*payment.Service)),

		// Handlers
		auth.NewHandler,
		user.NewHandler,
		listing.NewHandler,
		roommate.NewHandler,
		payment.NewHandler,
		admin.NewHandler,
		agent.NewHandler,

		// Jobs
		jobs.NewTokenCleanupJob,

		// Application layer
		app.NewServer,
	)
	return nil, nil, nil
}
