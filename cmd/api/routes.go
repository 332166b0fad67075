package main

import (
	"log"
	"net/http"

	httphandlers "networth/internal/interfaces/http"
	"networth/internal/shared/config"
	"networth/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Broker link callback. The portal redirects the browser here, so it
	// cannot sit behind the auth middleware: every outcome, including an
	// expired session, must end in a dashboard redirect rather than a 401.
	mux.HandleFunc("GET /api/broker/callback", deps.BrokerHandler.HandleCallback)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("POST /api/broker/connect", authMiddleware(http.HandlerFunc(deps.BrokerHandler.HandleConnect)))
	mux.Handle("/api/assets", authMiddleware(http.HandlerFunc(deps.AssetHandler.HandleAssets)))
	mux.Handle("/api/assets/{id}", authMiddleware(http.HandlerFunc(deps.AssetHandler.HandleAssetByID)))
	mux.Handle("/api/asset-categories", authMiddleware(http.HandlerFunc(deps.AssetHandler.HandleCategories)))
	mux.Handle("GET /api/link-flow/options", authMiddleware(http.HandlerFunc(deps.LinkFlowHandler.HandleOptions)))
	mux.Handle("POST /api/link-flow", authMiddleware(http.HandlerFunc(deps.LinkFlowHandler.HandleStartFlow)))
	mux.Handle("GET /api/link-flow/{id}", authMiddleware(http.HandlerFunc(deps.LinkFlowHandler.HandleGetFlow)))
	mux.Handle("POST /api/link-flow/{id}/events", authMiddleware(http.HandlerFunc(deps.LinkFlowHandler.HandleFlowEvent)))
	mux.Handle("/api/users/device-token", authMiddleware(http.HandlerFunc(deps.AuthHandler.HandleDeviceToken)))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
