// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the read-only catalog endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/books", h.handleList)
	r.Get("/books/{id}", h.handleGet)
	r.Get("/books/isbn/{isbn}", h.handleGetByISBN)
}

// AdminRoutes mounts the catalog mutations, meant to sit behind the
// admin-key guard.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/books", h.handleRegister)
	r.Put("/books/{id}", h.handleUpdate)
	r.Delete("/books/{id}", h.handleRemove)
}

type bookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		writeError(w, http.StatusBadRequest, "title, author and isbn are required")
		return
	}

	book, err := h.service.Register(r.Context(), req.Title, req.Author, req.ISBN)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		books []*Book
		err   error
	)
	switch {
	case r.URL.Query().Get("title") != "":
		books, err = h.service.ListByTitle(r.Context(), r.URL.Query().Get("title"))
	case r.URL.Query().Get("author") != "":
		books, err = h.service.ListByAuthor(r.Context(), r.URL.Query().Get("author"))
	default:
		books, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	book, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleGetByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.FindByISBN(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		writeError(w, http.StatusBadRequest, "title, author and isbn are required")
		return
	}

	book, err := h.service.Update(r.Context(), id, req.Title, req.Author, req.ISBN)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID")
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateISBN), errors.Is(err, ErrBookOnLoan):
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
