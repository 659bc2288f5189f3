package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/application/usecase"
)

// LoanHandler exposes the loan lifecycle over HTTP.
type LoanHandler struct {
	apply    *usecase.ApplyLoanUseCase
	approve  *usecase.ApproveLoanUseCase
	reject   *usecase.RejectLoanUseCase
	disburse *usecase.DisburseLoanUseCase
	collect  *usecase.InitiateCollectionUseCase
	complete *usecase.CompleteLoanUseCase
	queries  *usecase.LoanQueries
	logger   *slog.Logger
}

// NewLoanHandler creates the loan HTTP handler.
func NewLoanHandler(
	apply *usecase.ApplyLoanUseCase,
	approve *usecase.ApproveLoanUseCase,
	reject *usecase.RejectLoanUseCase,
	disburse *usecase.DisburseLoanUseCase,
	collect *usecase.InitiateCollectionUseCase,
	complete *usecase.CompleteLoanUseCase,
	queries *usecase.LoanQueries,
	logger *slog.Logger,
) *LoanHandler {
	return &LoanHandler{
		apply:    apply,
		approve:  approve,
		reject:   reject,
		disburse: disburse,
		collect:  collect,
		complete: complete,
		queries:  queries,
		logger:   logger,
	}
}

// RegisterRoutes attaches the loan routes to the router.
func (h *LoanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/loans", h.applyLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}", h.getLoan).Methods(http.MethodGet)
	router.HandleFunc("/loans/{id}/approve", h.approveLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/reject", h.rejectLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/disburse", h.disburseLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/repay", h.repayLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/complete", h.completeLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/balance", h.getBalance).Methods(http.MethodGet)
	router.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
}

func (h *LoanHandler) applyLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.apply.Execute(r.Context(), req)
	if err != nil {
		h.logger.Error("apply loan failed", "farmer_id", req.FarmerID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LoanHandler) approveLoan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.approve.Execute(r.Context(), dto.ApproveLoanRequest{
		LoanID: mux.Vars(r)["id"],
		Amount: body.Amount,
	})
	if err != nil {
		h.logger.Error("approve loan failed", "loan_id", mux.Vars(r)["id"], "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	resp, err := h.reject.Execute(r.Context(), dto.RejectLoanRequest{
		LoanID: mux.Vars(r)["id"],
		Reason: body.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) disburseLoan(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["id"]
	resp, err := h.disburse.Execute(r.Context(), loanID)
	if err != nil {
		h.logger.Error("disburse loan failed", "loan_id", loanID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *LoanHandler) repayLoan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loanID := mux.Vars(r)["id"]
	resp, err := h.collect.Execute(r.Context(), dto.CollectionRequest{
		LoanID: loanID,
		Amount: body.Amount,
	})
	if err != nil {
		h.logger.Error("initiate collection failed", "loan_id", loanID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *LoanHandler) completeLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.complete.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) getLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) getBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.GetLoanBalance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
