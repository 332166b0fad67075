package main

import (
	"context"
	"log"

	"networth/internal/domain/asset"
	"networth/internal/domain/brokerlink"
	"networth/internal/domain/notification"
	"networth/internal/infrastructure/firebase"
	"networth/internal/infrastructure/postgres"
	"networth/internal/infrastructure/snaptrade"
	httphandlers "networth/internal/interfaces/http"
	"networth/internal/shared/auth"
	"networth/internal/shared/config"
	"networth/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	AssetHandler    *httphandlers.AssetHandler
	BrokerHandler   *httphandlers.BrokerHandler
	LinkFlowHandler *httphandlers.LinkFlowHandler

	// Auth
	JWT *auth.JWT

	// Sync service (for scheduler)
	ImportService *brokerlink.ImportService

	// Repositories (for scheduler job provider)
	ConnectionRepo *postgres.BrokerConnectionRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	connectionRepo := postgres.NewBrokerConnectionRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	categoryRepo := postgres.NewAssetCategoryRepository(db)

	// Initialize the aggregation client. Missing credentials are tolerated
	// here; the client reports them per request so manual entry keeps working.
	snapClient := snaptrade.NewClient(
		snaptrade.Config{
			ClientID:    cfg.SnapTrade.ClientID,
			ConsumerKey: cfg.SnapTrade.ConsumerKey,
			BaseURL:     cfg.SnapTrade.BaseURL,
			RelayURL:    cfg.SnapTrade.RelayURL,
		},
		snaptrade.RetryConfig{
			MaxRetries:   cfg.SnapTrade.RetryMax,
			InitialDelay: cfg.SnapTrade.RetryDelay,
		},
	)

	// Initialize push notifications (optional)
	var notificationService *notification.Service
	if cfg.Firebase.CredentialsFile != "" {
		texts, err := messages.Load(cfg.Firebase.MessagesFile)
		if err != nil {
			return nil, err
		}
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, userRepo.ClearDeviceToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			notificationService = notification.NewService(fcmClient, userRepo, texts)
			log.Println("Firebase messaging initialized")
		}
	} else {
		log.Println("Firebase messaging disabled (no credentials file)")
	}

	// Initialize domain services
	assetService := asset.NewService(assetRepo, categoryRepo)
	linkService := brokerlink.NewLinkService(snapClient, connectionRepo)
	importService := brokerlink.NewImportService(snapClient, connectionRepo, assetRepo, categoryRepo, notificationService)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	assetHandler := httphandlers.NewAssetHandler(assetService)
	brokerHandler := httphandlers.NewBrokerHandler(linkService, importService, jwt)
	linkFlowHandler := httphandlers.NewLinkFlowHandler()

	return &Dependencies{
		DB:              db,
		AuthHandler:     authHandler,
		AssetHandler:    assetHandler,
		BrokerHandler:   brokerHandler,
		LinkFlowHandler: linkFlowHandler,
		JWT:             jwt,
		ImportService:   importService,
		ConnectionRepo:  connectionRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
