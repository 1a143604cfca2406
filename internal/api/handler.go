package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"PulseCast/internal/csvparser"
	"PulseCast/internal/engine"
	"PulseCast/internal/models"
	"PulseCast/internal/store"
)

type Handler struct {
	Campaigns  store.CampaignStore
	Logs       store.DeliveryLogStore
	Recipients store.RecipientDirectory
	Engine     *engine.Engine
	Log        *zap.Logger
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message     string     `json:"message"`
		ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	campaign := newDraftCampaign(payload.Message, payload.ScheduledAt)
	if err := h.Campaigns.CreateCampaign(r.Context(), campaign); err != nil {
		h.Log.Error("campaign create failed", zap.Error(err))
		http.Error(w, "failed to create campaign", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": campaign.ID})
}

func (h *Handler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	scheduled, err := h.Engine.StartCampaign(r.Context(), campaignID)
	switch {
	case errors.Is(err, store.ErrCampaignNotFound):
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	case errors.Is(err, store.ErrCampaignNotDraft):
		http.Error(w, "campaign already started", http.StatusConflict)
		return
	case err != nil:
		h.Log.Error("campaign start failed", zap.String("campaign_id", campaignID), zap.Error(err))
		http.Error(w, "failed to start campaign", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":        campaignID,
		"scheduled": scheduled,
	})
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	campaign, err := h.Campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			http.Error(w, "campaign not found", http.StatusNotFound)
			return
		}
		h.Log.Error("campaign fetch failed", zap.String("campaign_id", campaignID), zap.Error(err))
		http.Error(w, "failed to fetch campaign", http.StatusInternalServerError)
		return
	}

	stats, err := h.Logs.CampaignStats(r.Context(), campaignID)
	if err != nil {
		h.Log.Error("campaign stats failed", zap.String("campaign_id", campaignID), zap.Error(err))
		http.Error(w, "failed to fetch campaign stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign": campaign,
		"stats":    stats,
	})
}

// ListDeliveries exposes a campaign's recorded outcomes for audit.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	if _, err := h.Campaigns.GetCampaign(r.Context(), campaignID); err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			http.Error(w, "campaign not found", http.StatusNotFound)
			return
		}
		h.Log.Error("campaign fetch failed", zap.String("campaign_id", campaignID), zap.Error(err))
		http.Error(w, "failed to fetch campaign", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Logs.ListLogs(r.Context(), campaignID, limit)
	if err != nil {
		h.Log.Error("delivery list failed", zap.String("campaign_id", campaignID), zap.Error(err))
		http.Error(w, "failed to list deliveries", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deliveries": entries})
}

// ImportRecipients bulk-loads the recipient directory from an uploaded CSV
// with an id column and optional is_active / is_banned columns.
func (h *Handler) ImportRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := csvparser.ParseRecipients(r.Body, 0)
	if err != nil {
		http.Error(w, "invalid csv: "+err.Error(), http.StatusBadRequest)
		return
	}

	imported := 0
	for i := range recipients {
		if err := h.Recipients.UpsertRecipient(r.Context(), &recipients[i]); err != nil {
			h.Log.Error("recipient upsert failed",
				zap.String("recipient_id", recipients[i].ID),
				zap.Error(err),
			)
			continue
		}
		imported++
	}

	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}

func newDraftCampaign(message string, scheduledAt *time.Time) *models.Campaign {
	return &models.Campaign{
		ID:          uuid.NewString(),
		Message:     message,
		Status:      models.CampaignDraft,
		ScheduledAt: scheduledAt,
		CreatedAt:   time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
