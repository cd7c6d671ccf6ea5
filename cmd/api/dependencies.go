package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jomilu93/restaurant-booking-app/internal/domain/bookings"
	"github.com/jomilu93/restaurant-booking-app/internal/domain/profiles"
	"github.com/jomilu93/restaurant-booking-app/internal/domain/recommendations"
	"github.com/jomilu93/restaurant-booking-app/internal/domain/restaurants"
	"github.com/jomilu93/restaurant-booking-app/internal/domain/reviews"
	"github.com/jomilu93/restaurant-booking-app/internal/platform"
	"github.com/jomilu93/restaurant-booking-app/internal/types"
	"github.com/jomilu93/restaurant-booking-app/pkg/config"
	"github.com/jomilu93/restaurant-booking-app/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Platform clients
	Platforms map[types.Platform]platform.Client

	// Repositories
	RestaurantRepo     restaurants.Repository
	BookingRepo        bookings.Repository
	ReviewRepo         reviews.Repository
	PreferencesRepo    profiles.Repository
	RecommendationRepo recommendations.Repository

	// Services
	RestaurantSvc     restaurants.Service
	BookingSvc        bookings.Service
	ReviewSvc         reviews.Service
	PreferencesSvc    profiles.Service
	RecommendationSvc recommendations.Service

	// Handlers
	RestaurantHandler     *restaurants.Handler
	BookingHandler        *bookings.Handler
	ReviewHandler         *reviews.Handler
	PreferencesHandler    *profiles.Handler
	RecommendationHandler *recommendations.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initPlatforms()
	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initPlatforms wires the external booking platform clients.
func (d *Dependencies) initPlatforms() {
	d.Platforms = map[types.Platform]platform.Client{
		types.PlatformResy: platform.NewResyClient(
			d.Config.Platforms.ResyAPIKey,
			d.Logger,
			platform.WithResyDelay(d.Config.Platforms.ResyLatency),
			platform.WithResyCreateFailureRate(d.Config.Platforms.ResyFailureRate),
		),
		types.PlatformOpenTable: platform.NewOpenTableClient(
			d.Config.Platforms.OpenTableClientID,
			d.Config.Platforms.OpenTableClientSecret,
			d.Logger,
			platform.WithOpenTableDelay(d.Config.Platforms.OpenTableLatency),
			platform.WithOpenTableCreateFailureRate(d.Config.Platforms.OpenTableFailureRate),
		),
	}
	d.Logger.Info("platform clients initialized")
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.RestaurantRepo = restaurants.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.BookingRepo = bookings.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.ReviewRepo = reviews.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.PreferencesRepo = profiles.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.RecommendationRepo = recommendations.NewRepositoryImpl(d.DB.Pool, d.Logger)
	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.RestaurantSvc = restaurants.NewService(d.RestaurantRepo, d.Platforms, d.Logger)
	d.BookingSvc = bookings.NewService(d.BookingRepo, d.Platforms, d.Logger)
	d.ReviewSvc = reviews.NewService(d.ReviewRepo, d.Logger)
	d.PreferencesSvc = profiles.NewService(d.PreferencesRepo, d.Logger)
	d.RecommendationSvc = recommendations.NewService(d.RecommendationRepo, d.Logger)
	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.RestaurantHandler = restaurants.NewHandler(d.RestaurantSvc, d.Logger)
	d.BookingHandler = bookings.NewHandler(d.BookingSvc, d.Logger)
	d.ReviewHandler = reviews.NewHandler(d.ReviewSvc, d.Logger)
	d.PreferencesHandler = profiles.NewHandler(d.PreferencesSvc, d.Logger)
	d.RecommendationHandler = recommendations.NewHandler(d.RecommendationSvc, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
