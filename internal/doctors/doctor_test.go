package doctors

import (
	"errors"
	"strings"
	"testing"
)

func TestDoctor_Validate(t *testing.T) {
	valid := Doctor{Name: "Dr. Richard James", Email: "richard@example.com", Speciality: "General physician", Fees: 50}

	tests := []struct {
		name    string
		mutate  func(d *Doctor)
		wantErr string
	}{
		{name: "valid", mutate: func(d *Doctor) {}},
		{name: "missing name and email", mutate: func(d *Doctor) { d.Name, d.Email = "", "" }, wantErr: "name, email"},
		{name: "missing speciality", mutate: func(d *Doctor) { d.Speciality = "" }, wantErr: "speciality"},
		{name: "bad email", mutate: func(d *Doctor) { d.Email = "not-an-email" }, wantErr: "not valid"},
		{name: "negative fees", mutate: func(d *Doctor) { d.Fees = -1 }, wantErr: "fees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDoctor) {
				t.Fatalf("Validate() error = %v, want ErrInvalidDoctor", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDoctor_Normalize(t *testing.T) {
	d := Doctor{
		Name:    "  Dr. Emily Larson ",
		Email:   " Emily@Example.COM ",
		Address: Address{Line1: " 17th Cross ", Line2: " Richmond "},
	}
	d.Normalize()

	if d.Name != "Dr. Emily Larson" {
		t.Errorf("Name = %q", d.Name)
	}
	if d.Email != "emily@example.com" {
		t.Errorf("Email = %q", d.Email)
	}
	if d.Address.Line1 != "17th Cross" || d.Address.Line2 != "Richmond" {
		t.Errorf("Address = %+v", d.Address)
	}
}

func TestDoctor_Public(t *testing.T) {
	d := Doctor{Name: "Dr. Sarah Patel", Email: "sarah@example.com"}
	p := d.Public()
	if p.Email != "" {
		t.Errorf("Public().Email = %q, want empty", p.Email)
	}
	if d.Email == "" {
		t.Error("Public() modified the receiver")
	}
}

func TestProfileUpdate_Validate(t *testing.T) {
	fees := 40
	negative := -5
	available := false

	if err := (ProfileUpdate{}).Validate(); !errors.Is(err, ErrInvalidDoctor) {
		t.Errorf("empty update error = %v, want ErrInvalidDoctor", err)
	}
	if err := (ProfileUpdate{Fees: &negative}).Validate(); !errors.Is(err, ErrInvalidDoctor) {
		t.Errorf("negative fees error = %v, want ErrInvalidDoctor", err)
	}
	if err := (ProfileUpdate{Fees: &fees, Available: &available}).Validate(); err != nil {
		t.Errorf("valid update error = %v", err)
	}
}
