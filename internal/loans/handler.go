// internal/loans/handler.go
package loans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"libris/internal/catalog"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the loan endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/loans", h.handleListActive)
	r.Post("/loans", h.handleBorrow)
	r.Post("/returns", h.handleReturn)
	r.Get("/books/{id}/fee", h.handleFee)
}

// AdminRoutes mounts fine settlement, an operator action performed
// out-of-band from the borrow/return flow.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/books/{id}/fee/settlement", h.handleResolveFee)
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID     int `json:"book_id"`
		PeriodDays int `json:"period_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	loan, err := h.service.Borrow(r.Context(), req.BookID, req.PeriodDays)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID int `json:"book_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Return(r.Context(), req.BookID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListActiveLoans(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loans)
}

func (h *Handler) handleFee(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	fee, err := h.service.CalculateFee(r.Context(), bookID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"fee": fee.StringFixed(2)})
}

func (h *Handler) handleResolveFee(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	amount, err := h.service.ResolveFee(r.Context(), bookID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"settled": amount.StringFixed(2)})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var pending *PendingFineError
	switch {
	case errors.As(err, &pending):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  pending.Error(),
			"amount": pending.Amount.StringFixed(2),
		})
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyLoaned), errors.Is(err, ErrNotLoaned):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
