// Package admin serves /api/admin: doctor onboarding and directory management
// for the admin panel.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prescripto-backend/internal/doctors"
	"prescripto-backend/internal/httpx"
)

const defaultMaxImageBytes int64 = 5 << 20

// DoctorStore is the slice of doctors.Store the admin panel needs.
type DoctorStore interface {
	Create(ctx context.Context, d *doctors.Doctor) error
	List(ctx context.Context, f doctors.Filter) ([]doctors.Doctor, error)
	ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (doctors.Doctor, error)
}

// ImageStore holds doctor portraits.
type ImageStore interface {
	PutImage(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type Deps struct {
	Doctors       DoctorStore
	Images        ImageStore
	Logger        *zap.Logger
	MaxImageBytes int64
}

type handler struct {
	doctors       DoctorStore
	images        ImageStore
	logger        *zap.Logger
	maxImageBytes int64
}

// NewRouter returns the admin routes, relative to the mount prefix.
func NewRouter(d Deps) http.Handler {
	h := &handler{
		doctors:       d.Doctors,
		images:        d.Images,
		logger:        d.Logger,
		maxImageBytes: d.MaxImageBytes,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.maxImageBytes <= 0 {
		h.maxImageBytes = defaultMaxImageBytes
	}

	r := chi.NewRouter()
	r.Post("/add-doctor", h.addDoctor)
	r.Get("/all-doctors", h.allDoctors)
	r.Post("/change-availability", h.changeAvailability)
	r.Delete("/doctors/{id}", h.deleteDoctor)
	return r
}

func (h *handler) allDoctors(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context(), doctors.Filter{})
	if err != nil {
		h.logger.Error("list doctors failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list doctors")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"doctors": list})
}

type availabilityReq struct {
	DocID string `json:"docId"`
}

func (h *handler) changeAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "docId is required")
		return
	}
	id, err := uuid.Parse(req.DocID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid docId")
		return
	}

	available, err := h.doctors.ToggleAvailability(r.Context(), id)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("toggle availability failed", zap.String("doctor_id", id.String()), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to change availability")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Availability changed",
		"available": available,
	})
}

func (h *handler) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}

	deleted, err := h.doctors.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("delete doctor failed", zap.String("doctor_id", id.String()), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete doctor")
		return
	}

	// The record is gone either way; an orphaned image is only logged.
	if err := h.images.Remove(r.Context(), deleted.ImageKey); err != nil {
		h.logger.Warn("remove doctor image failed", zap.String("key", deleted.ImageKey), zap.Error(err))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Doctor deleted"})
}

// parseAddress accepts the address form field as a JSON object.
func parseAddress(raw string) (doctors.Address, error) {
	var a doctors.Address
	if raw == "" {
		return a, nil
	}
	err := json.Unmarshal([]byte(raw), &a)
	return a, err
}
