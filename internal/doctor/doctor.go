// Package doctor serves /api/doctor: the public doctor listing and the
// doctor's own profile.
package doctor

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prescripto-backend/internal/doctors"
	"prescripto-backend/internal/httpx"
)

type DoctorStore interface {
	List(ctx context.Context, f doctors.Filter) ([]doctors.Doctor, error)
	Get(ctx context.Context, id uuid.UUID) (doctors.Doctor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u doctors.ProfileUpdate) (doctors.Doctor, error)
}

type Deps struct {
	Doctors DoctorStore
	Logger  *zap.Logger
}

type handler struct {
	doctors DoctorStore
	logger  *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	h := &handler{doctors: d.Doctors, logger: d.Logger}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Get("/list", h.list)
	r.Get("/profile/{id}", h.profile)
	r.Put("/update-profile", h.updateProfile)
	return r
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context(), doctors.Filter{})
	if err != nil {
		h.logger.Error("list doctors failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list doctors")
		return
	}
	for i := range list {
		list[i] = list[i].Public()
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"doctors": list})
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	d, err := h.doctors.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, id, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profileData": d})
}

type updateProfileReq struct {
	DocID string `json:"docId"`
	doctors.ProfileUpdate
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := uuid.Parse(req.DocID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid docId")
		return
	}
	if err := req.ProfileUpdate.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.doctors.UpdateProfile(r.Context(), id, req.ProfileUpdate)
	if err != nil {
		h.writeStoreError(w, id, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Profile updated",
		"profileData": d,
	})
}

func (h *handler) writeStoreError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, doctors.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "doctor not found")
	case errors.Is(err, doctors.ErrInvalidDoctor):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("doctor store failed", zap.String("doctor_id", id.String()), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
