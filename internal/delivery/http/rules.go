package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/azizikri/storefront-rules/internal/arith"
	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Fields are decoded as any so the rules see the caller's JSON types.
type discountRequest struct {
	Price any `json:"price"`
	Code  any `json:"code"`
}

type userInputRequest struct {
	Username any `json:"username"`
	Age      any `json:"age"`
}

func decodeLoose(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

var errNotFinite = errors.New("value is not finite")

// queryFloat rejects NaN and infinities, which JSON cannot encode.
func queryFloat(r *http.Request, key string) (float64, error) {
	f, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func (h *Handler) GetCoupons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.GetCoupons())
}

func (h *Handler) CalculateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeLoose(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeOutcome(w, domain.CalculateDiscount(req.Price, req.Code))
}

func (h *Handler) ValidateUserInput(w http.ResponseWriter, r *http.Request) {
	var req userInputRequest
	if err := decodeLoose(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeOutcome(w, domain.ValidateUserInput(req.Username, req.Age))
}

func (h *Handler) IsValidUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	writeJSON(w, http.StatusOK, resultBody{Result: domain.IsValidUsername(username)})
}

func (h *Handler) IsPriceInRange(w http.ResponseWriter, r *http.Request) {
	price, err := queryFloat(r, "price")
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}
	lo, err := queryFloat(r, "min")
	if err != nil {
		http.Error(w, "invalid min", http.StatusBadRequest)
		return
	}
	hi, err := queryFloat(r, "max")
	if err != nil {
		http.Error(w, "invalid max", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Result: domain.IsPriceInRange(price, lo, hi)})
}

func (h *Handler) CanDrive(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(r.URL.Query().Get("age"))
	if err != nil {
		http.Error(w, "invalid age", http.StatusBadRequest)
		return
	}
	writeOutcome(w, domain.CanDrive(age, r.URL.Query().Get("country")))
}

func (h *Handler) FetchData(w http.ResponseWriter, r *http.Request) {
	data, err := domain.FetchData(r.Context())
	if err != nil {
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Result: data})
}

func (h *Handler) Max(w http.ResponseWriter, r *http.Request) {
	a, err := queryFloat(r, "a")
	if err != nil {
		http.Error(w, "invalid a", http.StatusBadRequest)
		return
	}
	b, err := queryFloat(r, "b")
	if err != nil {
		http.Error(w, "invalid b", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Result: arith.Max(a, b)})
}

func (h *Handler) FizzBuzz(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, "invalid number", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Result: arith.FizzBuzz(n)})
}
