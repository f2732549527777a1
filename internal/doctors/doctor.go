// Package doctors persists the doctor directory shared by the admin, doctor
// and user routers.
package doctors

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("doctor not found")
	ErrDuplicateEmail = errors.New("doctor email already registered")
	ErrInvalidDoctor  = errors.New("invalid doctor")
)

type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// Doctor is one entry in the directory.
type Doctor struct {
	ID         uuid.UUID `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	ImageURL   string    `json:"image"`
	ImageKey   string    `json:"-"`
	Speciality string    `json:"speciality"`
	Degree     string    `json:"degree"`
	Experience string    `json:"experience"`
	About      string    `json:"about"`
	Fees       int       `json:"fees"`
	Address    Address   `json:"address"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"date"`
}

// Public returns a copy safe to show to patients.
func (d Doctor) Public() Doctor {
	d.Email = ""
	return d
}

// Normalize trims whitespace and lower-cases the email.
func (d *Doctor) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Speciality = strings.TrimSpace(d.Speciality)
	d.Degree = strings.TrimSpace(d.Degree)
	d.Experience = strings.TrimSpace(d.Experience)
	d.About = strings.TrimSpace(d.About)
	d.Address.Line1 = strings.TrimSpace(d.Address.Line1)
	d.Address.Line2 = strings.TrimSpace(d.Address.Line2)
}

// Validate checks the fields a new doctor must carry. Errors wrap
// ErrInvalidDoctor.
func (d Doctor) Validate() error {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if d.Speciality == "" {
		missing = append(missing, "speciality")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDoctor, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidDoctor, d.Email)
	}
	if d.Fees < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidDoctor)
	}
	return nil
}

// Filter narrows List results. Zero value matches every doctor.
type Filter struct {
	Speciality    string
	AvailableOnly bool
}

// ProfileUpdate carries the fields a doctor may change; nil fields are left
// untouched.
type ProfileUpdate struct {
	Fees      *int     `json:"fees,omitempty"`
	Address   *Address `json:"address,omitempty"`
	Available *bool    `json:"available,omitempty"`
}

func (u ProfileUpdate) Empty() bool {
	return u.Fees == nil && u.Address == nil && u.Available == nil
}

func (u ProfileUpdate) Validate() error {
	if u.Empty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidDoctor)
	}
	if u.Fees != nil && *u.Fees < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidDoctor)
	}
	return nil
}
