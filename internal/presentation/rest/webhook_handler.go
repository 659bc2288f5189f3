package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Jonathan-321/congenial-eureka/internal/application/usecase"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// webhookPayload tolerates the field aliases different gateway environments
// use for the same values.
type webhookPayload struct {
	ExternalID    string `json:"external_id"`
	TransactionID string `json:"transaction_id"`
	FinancialID   string `json:"financial_transaction_id"`
	Amount        string `json:"amount"`
	PayerPhone    string `json:"payer_phone"`
	PhoneNumber   string `json:"phone_number"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

func (p webhookPayload) reference() string {
	if p.ExternalID != "" {
		return p.ExternalID
	}
	return p.TransactionID
}

// WebhookHandler ingests asynchronous gateway notifications. Everything
// funnels into the reconciliation coordinator; duplicates and unknown
// references are acknowledged with 200 so the gateway stops redelivering.
type WebhookHandler struct {
	reconcile *usecase.ReconcileUseCase
	logger    *slog.Logger
}

// NewWebhookHandler creates the webhook HTTP handler.
func NewWebhookHandler(reconcile *usecase.ReconcileUseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{reconcile: reconcile, logger: logger}
}

// RegisterRoutes attaches the webhook route to the router.
func (h *WebhookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/webhooks/momo", h.handle).Methods(http.MethodPost)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	reference := payload.reference()
	if reference == "" || payload.Status == "" {
		writeError(w, http.StatusBadRequest, "reference and status are required")
		return
	}

	status := mapWebhookStatus(payload)
	if err := h.reconcile.Reconcile(r.Context(), reference, status); err != nil {
		h.logger.Error("webhook reconciliation failed", "reference", reference, "error", err)
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// mapWebhookStatus treats anything that is not SUCCESSFUL or PENDING as a
// failure report.
func mapWebhookStatus(payload webhookPayload) port.GatewayStatus {
	switch strings.ToUpper(payload.Status) {
	case "SUCCESSFUL":
		return port.GatewayStatus{
			Status:      valueobject.TransactionStatusSuccessful,
			FinancialID: payload.FinancialID,
		}
	case "PENDING":
		return port.GatewayStatus{Pending: true}
	default:
		return port.GatewayStatus{
			Status: valueobject.TransactionStatusFailed,
			Reason: payload.Reason,
		}
	}
}
