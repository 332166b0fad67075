package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"networth/internal/domain/asset"
	"networth/internal/domain/brokerlink"
	"networth/internal/infrastructure/snaptrade"
	"networth/internal/shared/auth"
	"networth/internal/shared/middleware"
)

// dashboardPath is where the browser lands after the hosted portal flow,
// successful or not.
const dashboardPath = "/dashboard/assets"

// Enumerated callback outcome codes. The dashboard switches on these; adding
// a code means adding a matching banner there.
const (
	callbackErrMissingUserID = "missing_user_id"
	callbackErrAuthMismatch  = "auth_mismatch"
	callbackErrLinkFailed    = "link_failed"
	callbackErrConfig        = "config_error"
	callbackErrSyncFailed    = "sync_failed"
)

// callbackMessages are the only texts ever embedded in the redirect URL.
// Internal error strings never reach the query string.
var callbackMessages = map[string]string{
	callbackErrMissingUserID: "The callback is missing a user id.",
	callbackErrAuthMismatch:  "Please sign in as the user who started the link and try again.",
	callbackErrLinkFailed:    "The broker link attempt did not complete.",
	callbackErrConfig:        "Broker linking is not configured on the server.",
	callbackErrSyncFailed:    "Importing your holdings failed. Please try again.",
}

// BrokerHandler serves the broker link endpoints: starting a link attempt
// and receiving the hosted portal callback.
type BrokerHandler struct {
	links   *brokerlink.LinkService
	imports *brokerlink.ImportService
	jwt     *auth.JWT
}

// NewBrokerHandler creates a new broker handler
func NewBrokerHandler(links *brokerlink.LinkService, imports *brokerlink.ImportService, jwt *auth.JWT) *BrokerHandler {
	return &BrokerHandler{links: links, imports: imports, jwt: jwt}
}

type ConnectRequest struct {
	UserID      string `json:"userId"`
	BrokerID    string `json:"brokerId,omitempty"`
	CallbackURL string `json:"callbackUrl"`
}

type ConnectResponse struct {
	RedirectURI string `json:"redirectUri"`
}

// HandleConnect starts a broker link attempt and returns the hosted portal
// URL the client should redirect the browser to.
func (h *BrokerHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionUserID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	if req.CallbackURL == "" {
		http.Error(w, "callbackUrl is required", http.StatusBadRequest)
		return
	}
	if req.UserID != sessionUserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	portalURL, err := h.links.CreateConnectionLink(r.Context(), req.UserID, req.BrokerID, req.CallbackURL)
	if err != nil {
		log.Printf("Error creating connection link for user %s: %v", req.UserID, err)
		switch {
		case errors.Is(err, snaptrade.ErrMissingCredentials):
			http.Error(w, "Broker linking is not configured", http.StatusInternalServerError)
		default:
			http.Error(w, "Broker service is unavailable", http.StatusBadGateway)
		}
		return
	}

	// The portal URL is single-use; keep it out of shared caches
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConnectResponse{RedirectURI: portalURL})
}

// HandleCallback receives the browser redirect from the hosted portal. It
// cannot answer with an error page, only with a dashboard redirect, so every
// outcome maps to a query marker the dashboard can display.
//
// Not mounted behind the auth middleware: an expired session must still
// produce a redirect, not a bare 401.
func (h *BrokerHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.redirectError(w, r, callbackErrMissingUserID)
		return
	}

	// The callback must land in the same browser session that started the
	// link; a mismatched or absent session writes nothing.
	claims, err := h.sessionClaims(r)
	if err != nil || claims.UserID != userID {
		log.Printf("Broker callback: session mismatch for user %s", userID)
		h.redirectError(w, r, callbackErrAuthMismatch)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" && r.URL.Query().Get("success") != "true" {
		h.redirectError(w, r, callbackErrLinkFailed)
		return
	}

	// A code means the link still has to be exchanged and the connection row
	// filed; success=true alone means the portal already confirmed the link
	// and only the holdings import remains.
	var result *brokerlink.ImportResult
	if code != "" {
		result, err = h.imports.HandleCallback(r.Context(), userID, code)
	} else {
		result, err = h.imports.ImportHoldings(r.Context(), userID)
	}
	if err != nil {
		log.Printf("Broker callback: import failed for user %s: %v", userID, err)
		switch {
		case errors.Is(err, snaptrade.ErrMissingCredentials), errors.Is(err, asset.ErrCategoryNotFound):
			h.redirectError(w, r, callbackErrConfig)
		default:
			h.redirectError(w, r, callbackErrSyncFailed)
		}
		return
	}

	log.Printf("Broker callback: user %s linked account %q, imported %d holdings (%d skipped)",
		userID, result.AccountID, result.Imported, result.Skipped)

	http.Redirect(w, r, dashboardPath+"?success=true", http.StatusSeeOther)
}

func (h *BrokerHandler) sessionClaims(r *http.Request) (*auth.JWTClaims, error) {
	cookie, err := r.Cookie("access_token")
	if err != nil {
		return nil, err
	}
	return h.jwt.Validate(cookie.Value)
}

func (h *BrokerHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	q := url.Values{}
	q.Set("error", code)
	if msg, ok := callbackMessages[code]; ok {
		q.Set("message", msg)
	}
	http.Redirect(w, r, dashboardPath+"?"+q.Encode(), http.StatusSeeOther)
}
