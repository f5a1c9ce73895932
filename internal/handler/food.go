package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/nutrition"
)

// FoodSearcher looks foods up in a product database.
type FoodSearcher interface {
	Search(ctx context.Context, query string) nutrition.Outcome
}

// FoodEstimator asks an AI model for estimates.
type FoodEstimator interface {
	EstimateText(ctx context.Context, query string) nutrition.Outcome
	EstimateImage(ctx context.Context, image string) nutrition.ImageOutcome
}

// FoodHandler proxies the food lookup and AI estimate providers so that API
// keys stay on the server.
type FoodHandler struct {
	search   FoodSearcher
	estimate FoodEstimator
	logger   *slog.Logger
}

func NewFoodHandler(search FoodSearcher, estimate FoodEstimator, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{search: search, estimate: estimate, logger: logger}
}

// FoodsResponse carries the outcome status next to the items. A failed
// lookup is still 200: the client decides how to show it.
type FoodsResponse struct {
	Status nutrition.Status `json:"status"`
	Items  []model.FoodItem `json:"items"`
	Error  string           `json:"error,omitempty"`
}

type ImageResponse struct {
	Status nutrition.Status `json:"status"`
	Item   *model.FoodItem  `json:"item"`
	Error  string           `json:"error,omitempty"`
}

// HandleSearch: GET /api/foods/search?q=
func (h *FoodHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, foodsResponse(h.search.Search(r.Context(), r.URL.Query().Get("q"))))
}

// HandleEstimate: GET /api/foods/estimate?q=
func (h *FoodHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, foodsResponse(h.estimate.EstimateText(r.Context(), r.URL.Query().Get("q"))))
}

type analyzeRequest struct {
	Image string `json:"image"`
}

// HandleAnalyze: POST /api/foods/analyze {"image": "<base64 or data URI>"}
func (h *FoodHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	out := h.estimate.EstimateImage(r.Context(), req.Image)
	resp := ImageResponse{Status: out.Status(), Item: out.Item}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func foodsResponse(out nutrition.Outcome) FoodsResponse {
	resp := FoodsResponse{Status: out.Status(), Items: out.Items}
	if resp.Items == nil {
		resp.Items = []model.FoodItem{}
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return resp
}
