package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/caloriesnap/internal/auth"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/service"
)

type ProfileHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// HandleGet returns a profile, creating the default one on first access.
//
// HTTP: GET /api/profiles/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate applies a partial update. Fields absent from the body are left
// alone; the response is the full stored profile.
//
// HTTP: PATCH /api/profiles/{id}  {"daily_calorie_goal": 1800}
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var u model.ProfileUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
