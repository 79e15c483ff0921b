package activities

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"outings/models"
	"outings/utils"
)

// Handler exposes the activity service over HTTP.
type Handler struct {
	Svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: log}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req models.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}

	if errs := h.Svc.ValidateCreate(req); len(errs) > 0 {
		utils.RespondWithValidationErrors(w, "Validation failed", errs)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	activity, err := h.Svc.Create(req, userID)
	if err != nil {
		h.Log.Error("failed to create activity", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to create activity")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, activity)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	opts := QueryOptions{
		Q:     q.Get("q"),
		Slug:  q.Get("slug"),
		Sort:  q.Get("_sort"),
		Order: q.Get("_order"),
	}

	var out []models.Activity
	if opts.Q == "" && opts.Slug == "" && opts.Sort == "" {
		out = h.Svc.GetAll()
	} else {
		out = h.Svc.Query(opts)
	}
	if out == nil {
		out = []models.Activity{}
	}

	utils.RespondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	activity, ok := h.Svc.GetByID(ps.ByName("id"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, activity)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	existing, ok := h.Svc.GetByID(id)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
		return
	}

	var patch models.UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}

	if errs := h.Svc.ValidateUpdate(patch, existing); len(errs) > 0 {
		utils.RespondWithValidationErrors(w, "Validation failed", errs)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	activity, err := h.Svc.Update(id, patch, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "You can only update your own activities")
	case err != nil:
		h.Log.Error("failed to update activity", zap.String("id", id), zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to update activity")
	default:
		utils.RespondWithJSON(w, http.StatusOK, activity)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	deleted, err := h.Svc.Delete(id, userID)
	if errors.Is(err, ErrForbidden) {
		utils.RespondWithError(w, http.StatusForbidden, "You can only delete your own activities")
		return
	}
	if !deleted {
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TransitionStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Request body must be a valid JSON object")
		return
	}
	if body.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Status field is required and must be a string")
		return
	}
	if !models.IsActivityStatus(body.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, statusError().Message)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	activity, err := h.Svc.TransitionStatus(id, body.Status, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "You can only transition your own activities")
	case err != nil:
		h.Log.Error("failed to transition activity status", zap.String("id", id), zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to transition activity status")
	default:
		utils.RespondWithJSON(w, http.StatusOK, activity)
	}
}
