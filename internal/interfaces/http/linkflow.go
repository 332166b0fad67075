package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"networth/internal/domain/linkflow"
	"networth/internal/shared/middleware"
)

// Wizard flows are short-lived UI state; anything older than this is junk.
const flowTTL = 30 * time.Minute

// LinkFlowHandler serves the add-asset wizard. Flows live in memory, scoped
// to the user that started them; they never touch the database.
type LinkFlowHandler struct {
	mu    sync.Mutex
	flows map[string]*flowEntry
}

type flowEntry struct {
	flow      *linkflow.Flow
	userID    string
	updatedAt time.Time
}

// NewLinkFlowHandler creates a new link flow handler
func NewLinkFlowHandler() *LinkFlowHandler {
	return &LinkFlowHandler{flows: make(map[string]*flowEntry)}
}

type FlowEventRequest struct {
	Event  string `json:"event"`
	Option string `json:"option,omitempty"`
}

type FlowResponse struct {
	FlowID    string             `json:"flowId"`
	State     linkflow.State     `json:"state"`
	Options   []linkflow.Option  `json:"options"`
	Selection linkflow.Selection `json:"selection"`
}

// HandleOptions serves the full wizard catalog: every asset type and the
// broker categories with their brokers. Static; the per-state choices come
// back with each flow response instead.
func (h *LinkFlowHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(linkflow.DefaultCatalog())
}

// HandleStartFlow creates a new wizard flow for the authenticated user
func (h *LinkFlowHandler) HandleStartFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flowID := uuid.NewString()
	flow := linkflow.New()

	h.mu.Lock()
	h.pruneLocked()
	h.flows[flowID] = &flowEntry{flow: flow, userID: userID, updatedAt: time.Now()}
	h.mu.Unlock()

	writeFlow(w, flowID, flow)
}

// HandleFlowEvent applies one wizard event to an existing flow
func (h *LinkFlowHandler) HandleFlowEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req FlowEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flowID := r.PathValue("id")

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.flows[flowID]
	if !ok || entry.userID != userID {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}

	var err error
	switch req.Event {
	case "select_asset_type":
		err = entry.flow.SelectAssetType(req.Option)
	case "select_link_method":
		err = entry.flow.SelectLinkMethod(req.Option)
	case "select_category":
		err = entry.flow.SelectCategory(req.Option)
	case "select_broker":
		err = entry.flow.SelectBroker(req.Option)
	case "back":
		err = entry.flow.Back()
	default:
		http.Error(w, "Unknown event", http.StatusBadRequest)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, linkflow.ErrInvalidTransition), errors.Is(err, linkflow.ErrUnknownOption):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "Failed to apply event", http.StatusInternalServerError)
		}
		return
	}

	entry.updatedAt = time.Now()
	writeFlow(w, flowID, entry.flow)
}

// HandleGetFlow returns the current state of a flow
func (h *LinkFlowHandler) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flowID := r.PathValue("id")

	h.mu.Lock()
	entry, ok := h.flows[flowID]
	h.mu.Unlock()

	if !ok || entry.userID != userID {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}

	writeFlow(w, flowID, entry.flow)
}

func (h *LinkFlowHandler) pruneLocked() {
	cutoff := time.Now().Add(-flowTTL)
	for id, entry := range h.flows {
		if entry.updatedAt.Before(cutoff) {
			delete(h.flows, id)
		}
	}
}

func writeFlow(w http.ResponseWriter, flowID string, flow *linkflow.Flow) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FlowResponse{
		FlowID:    flowID,
		State:     flow.State(),
		Options:   flow.Options(),
		Selection: flow.Selection(),
	})
}
