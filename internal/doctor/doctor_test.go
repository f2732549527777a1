package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"prescripto-backend/internal/doctors"
	"prescripto-backend/internal/httpx"
)

type fakeDoctors struct {
	byID    map[uuid.UUID]doctors.Doctor
	listErr error
}

func (f *fakeDoctors) List(ctx context.Context, flt doctors.Filter) ([]doctors.Doctor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]doctors.Doctor, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDoctors) Get(ctx context.Context, id uuid.UUID) (doctors.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	return d, nil
}

func (f *fakeDoctors) UpdateProfile(ctx context.Context, id uuid.UUID, u doctors.ProfileUpdate) (doctors.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	if u.Fees != nil {
		d.Fees = *u.Fees
	}
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.Available != nil {
		d.Available = *u.Available
	}
	f.byID[id] = d
	return d, nil
}

func setup() (*fakeDoctors, doctors.Doctor, http.Handler) {
	d := doctors.Doctor{
		ID:         uuid.New(),
		Name:       "Dr. Andrew Williams",
		Email:      "andrew@example.com",
		Speciality: "Neurologist",
		Fees:       50,
		Available:  true,
	}
	store := &fakeDoctors{byID: map[uuid.UUID]doctors.Doctor{d.ID: d}}
	return store, d, httpx.JSONBody(0)(NewRouter(Deps{Doctors: store}))
}

func TestList_HidesEmail(t *testing.T) {
	_, _, h := setup()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Success bool              `json:"success"`
		Doctors []json.RawMessage `json:"doctors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Doctors) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if strings.Contains(string(resp.Doctors[0]), "andrew@example.com") {
		t.Errorf("public listing leaked email: %s", resp.Doctors[0])
	}
}

func TestList_StoreError(t *testing.T) {
	store, _, h := setup()
	store.listErr = errors.New("db down")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/list", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestProfile(t *testing.T) {
	_, d, h := setup()

	tests := []struct {
		path   string
		status int
	}{
		{"/profile/" + d.ID.String(), http.StatusOK},
		{"/profile/" + uuid.NewString(), http.StatusNotFound},
		{"/profile/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.status)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	store, d, h := setup()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "fees and address",
			body:   `{"docId":"` + d.ID.String() + `","fees":80,"address":{"line1":"57th Cross","line2":"Richmond"}}`,
			status: http.StatusOK,
		},
		{name: "nothing to update", body: `{"docId":"` + d.ID.String() + `"}`, status: http.StatusBadRequest},
		{name: "negative fees", body: `{"docId":"` + d.ID.String() + `","fees":-1}`, status: http.StatusBadRequest},
		{name: "unknown doctor", body: `{"docId":"` + uuid.NewString() + `","available":false}`, status: http.StatusNotFound},
		{name: "bad id", body: `{"docId":"x","fees":10}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/update-profile", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
		})
	}

	got := store.byID[d.ID]
	if got.Fees != 80 || got.Address.Line1 != "57th Cross" {
		t.Errorf("profile not updated: %+v", got)
	}
}
