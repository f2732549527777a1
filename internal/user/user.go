// Package user serves /api/user: doctor discovery for patients.
package user

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
	r.Get("/doctors", h.doctorsBySpeciality)
	r.Get("/doctors/{id}", h.doctor)
	r.Post("/find-doctors", h.findDoctors)
	return r
}

// doctorsBySpeciality lists bookable doctors, optionally narrowed by ?speciality=.
func (h *handler) doctorsBySpeciality(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, doctors.Filter{
		Speciality:    r.URL.Query().Get("speciality"),
		AvailableOnly: true,
	})
}

type findReq struct {
	Speciality    string `json:"speciality"`
	AvailableOnly *bool  `json:"availableOnly"`
}

func (h *handler) findDoctors(w http.ResponseWriter, r *http.Request) {
	var req findReq
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrNoBody) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := doctors.Filter{Speciality: req.Speciality, AvailableOnly: true}
	if req.AvailableOnly != nil {
		f.AvailableOnly = *req.AvailableOnly
	}
	h.writeList(w, r, f)
}

func (h *handler) writeList(w http.ResponseWriter, r *http.Request, f doctors.Filter) {
	list, err := h.doctors.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list doctors failed", zap.String("speciality", f.Speciality), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list doctors")
		return
	}
	for i := range list {
		list[i] = list[i].Public()
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"doctors": list})
}

func (h *handler) doctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	d, err := h.doctors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("get doctor failed", zap.String("doctor_id", id.String()), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load doctor")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"doctor": d.Public()})
}
