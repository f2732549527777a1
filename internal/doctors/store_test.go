package doctors

import (
	"reflect"
	"strings"
	"testing"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantWhere string
		wantArgs  []any
	}{
		{name: "no filter", filter: Filter{}, wantWhere: "", wantArgs: nil},
		{
			name:      "speciality",
			filter:    Filter{Speciality: " Neurologist "},
			wantWhere: " WHERE lower(speciality) = lower($1)",
			wantArgs:  []any{"Neurologist"},
		},
		{
			name:      "available only",
			filter:    Filter{AvailableOnly: true},
			wantWhere: " WHERE available = TRUE",
		},
		{
			name:      "both",
			filter:    Filter{Speciality: "Pediatricians", AvailableOnly: true},
			wantWhere: " WHERE lower(speciality) = lower($1) AND available = TRUE",
			wantArgs:  []any{"Pediatricians"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := listQuery(tt.filter)

			if !strings.HasPrefix(q, "SELECT ") || !strings.HasSuffix(q, " ORDER BY created_at DESC, name") {
				t.Fatalf("unexpected query shape: %q", q)
			}
			if tt.wantWhere == "" {
				if strings.Contains(q, "WHERE") {
					t.Errorf("query has WHERE clause: %q", q)
				}
			} else if !strings.Contains(q, tt.wantWhere+" ORDER BY") {
				t.Errorf("query %q missing %q", q, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}
