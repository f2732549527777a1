package admin

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prescripto-backend/internal/doctors"
	"prescripto-backend/internal/httpx"
)

// imageExtensions lists accepted portrait types by sniffed content type.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// sniffImage detects the image type from the first bytes of f and rewinds it.
func sniffImage(f multipart.File) (contentType, ext string, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	contentType = http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", errors.New("unsupported image type " + contentType)
	}
	return contentType, ext, nil
}

// doctorFromForm reads the doctor fields of the add-doctor form.
func doctorFromForm(r *http.Request) (doctors.Doctor, error) {
	d := doctors.Doctor{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Speciality: r.FormValue("speciality"),
		Degree:     r.FormValue("degree"),
		Experience: r.FormValue("experience"),
		About:      r.FormValue("about"),
		Available:  true,
	}

	if raw := strings.TrimSpace(r.FormValue("fees")); raw != "" {
		fees, err := strconv.Atoi(raw)
		if err != nil {
			return d, errors.New("fees must be a whole number")
		}
		d.Fees = fees
	}
	if raw := strings.TrimSpace(r.FormValue("available")); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return d, errors.New("available must be true or false")
		}
		d.Available = available
	}

	addr, err := parseAddress(r.FormValue("address"))
	if err != nil {
		return d, errors.New("address must be a JSON object")
	}
	d.Address = addr

	d.Normalize()
	return d, d.Validate()
}

// addDoctor handles POST /add-doctor: a multipart form with the doctor fields
// and an "image" file. The image is stored first; if the record cannot be
// inserted the image is removed again.
func (h *handler) addDoctor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	d, err := doctorFromForm(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType, ext, err := sniffImage(file)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d.ID = uuid.New()
	d.ImageKey = "doctors/" + d.ID.String() + ext
	url, err := h.images.PutImage(r.Context(), d.ImageKey, file, header.Size, contentType)
	if err != nil {
		h.logger.Error("store doctor image failed",
			zap.String("key", d.ImageKey),
			zap.String("filename", filepath.Base(header.Filename)),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusBadGateway, "failed to store image")
		return
	}
	d.ImageURL = url

	if err := h.doctors.Create(r.Context(), &d); err != nil {
		if rmErr := h.images.Remove(r.Context(), d.ImageKey); rmErr != nil {
			h.logger.Warn("remove orphaned image failed", zap.String("key", d.ImageKey), zap.Error(rmErr))
		}
		switch {
		case errors.Is(err, doctors.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, "a doctor with this email already exists")
		case errors.Is(err, doctors.ErrInvalidDoctor):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("create doctor failed", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, "failed to add doctor")
		}
		return
	}

	h.logger.Info("doctor added", zap.String("doctor_id", d.ID.String()), zap.String("speciality", d.Speciality))
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Doctor added",
		"doctor":  d,
	})
}
