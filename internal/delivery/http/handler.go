package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/stack"
	"github.com/azizikri/storefront-rules/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	Result any `json:"result"`
}

type Handler struct {
	gateway usecase.ProductGateway
}

func NewHandler(gateway usecase.ProductGateway) *Handler {
	return &Handler{gateway: gateway}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/coupons", h.GetCoupons)
		r.Post("/discounts", h.CalculateDiscount)
		r.Post("/users/validate", h.ValidateUserInput)
		r.Get("/usernames/{username}/valid", h.IsValidUsername)
		r.Get("/prices/in-range", h.IsPriceInRange)
		r.Get("/driving/eligibility", h.CanDrive)
		r.Get("/data", h.FetchData)
		r.Get("/max", h.Max)
		r.Get("/fizzbuzz/{n}", h.FizzBuzz)

		r.Post("/products", h.CreateProduct)
		r.Post("/products/undo", h.UndoLastProduct)
		r.Get("/products/{name}", h.GetProduct)
	})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.gateway.CreateProduct(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateProduct) {
			http.Error(w, "product already exists", http.StatusConflict)
			return
		}
		log.Printf("Create product %q failed: %v", req.Name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	product, err := h.gateway.GetProduct(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Printf("Get product %q failed: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) UndoLastProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.gateway.UndoLastProduct(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, stack.ErrEmpty):
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		default:
			log.Printf("Undo last product failed: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeOutcome[T any](w http.ResponseWriter, o domain.Outcome[T]) {
	if v, ok := o.Value(); ok {
		writeJSON(w, http.StatusOK, resultBody{Result: v})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: o.Reason()})
}
