package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"networth/internal/domain/asset"
	"networth/internal/shared/middleware"
)

// AssetHandler serves the asset CRUD endpoints
type AssetHandler struct {
	assetService *asset.Service
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *asset.Service) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

type CreateAssetRequest struct {
	Name             string            `json:"name"`
	Value            float64           `json:"value"`
	Description      string            `json:"description"`
	Location         string            `json:"location"`
	AcquiredAt       *time.Time        `json:"acquiredAt"`
	AcquisitionValue *float64          `json:"acquisitionValue"`
	CategoryID       int64             `json:"categoryId"`
	IsLiability      bool              `json:"isLiability"`
	Metadata         map[string]string `json:"metadata"`
}

// HandleAssets serves the asset collection (GET lists, POST creates)
func (h *AssetHandler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListAssets(w, r, userID)
	case http.MethodPost:
		h.handleCreateAsset(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AssetHandler) handleListAssets(w http.ResponseWriter, r *http.Request, userID string) {
	assets, err := h.assetService.ListAssetsByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing assets for user %s: %v", userID, err)
		http.Error(w, "Failed to list assets", http.StatusInternalServerError)
		return
	}

	if assets == nil {
		assets = []*asset.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

func (h *AssetHandler) handleCreateAsset(w http.ResponseWriter, r *http.Request, userID string) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.assetService.CreateAsset(r.Context(), asset.CreateParams{
		UserID:           userID,
		Name:             req.Name,
		Value:            req.Value,
		Description:      req.Description,
		Location:         req.Location,
		AcquiredAt:       req.AcquiredAt,
		AcquisitionValue: req.AcquisitionValue,
		CategoryID:       req.CategoryID,
		IsLiability:      req.IsLiability,
		Metadata:         req.Metadata,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleAssetByID serves one asset (GET and DELETE)
func (h *AssetHandler) HandleAssetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetAsset(w, r, userID, assetID)
	case http.MethodDelete:
		h.handleDeleteAsset(w, r, userID, assetID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AssetHandler) handleGetAsset(w http.ResponseWriter, r *http.Request, userID string, assetID int64) {
	a, err := h.assetService.GetAsset(r.Context(), assetID, userID)
	if err != nil {
		writeAssetError(w, userID, assetID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

func (h *AssetHandler) handleDeleteAsset(w http.ResponseWriter, r *http.Request, userID string, assetID int64) {
	if err := h.assetService.DeleteAsset(r.Context(), assetID, userID); err != nil {
		writeAssetError(w, userID, assetID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCategories lists the asset categories
func (h *AssetHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	categories, err := h.assetService.ListCategories(r.Context())
	if err != nil {
		log.Printf("Error listing asset categories: %v", err)
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []*asset.Category{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func writeAssetError(w http.ResponseWriter, userID string, assetID int64, err error) {
	switch {
	case errors.Is(err, asset.ErrAssetNotFound):
		http.Error(w, "Asset not found", http.StatusNotFound)
	case errors.Is(err, asset.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Printf("Error handling asset %d for user %s: %v", assetID, userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
