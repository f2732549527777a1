package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `id, name, email, image_url, image_key, speciality, degree, experience,
	about, fees, address_line1, address_line2, available, created_at`

// Store reads and writes doctors in PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.ImageURL, &d.ImageKey, &d.Speciality, &d.Degree, &d.Experience,
		&d.About, &d.Fees, &d.Address.Line1, &d.Address.Line2, &d.Available, &d.CreatedAt,
	)
	return d, err
}

// Create validates d, assigns it an id when it has none and inserts it.
func (s *Store) Create(ctx context.Context, d *Doctor) error {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO doctors (id, name, email, image_url, image_key, speciality, degree, experience,
			about, fees, address_line1, address_line2, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`, d.ID, d.Name, d.Email, d.ImageURL, d.ImageKey, d.Speciality, d.Degree, d.Experience,
		d.About, d.Fees, d.Address.Line1, d.Address.Line2, d.Available,
	).Scan(&d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (Doctor, error) {
	d, err := scanDoctor(s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM doctors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, fmt.Errorf("select doctor: %w", err)
	}
	return d, nil
}

// listQuery builds the SELECT for f. Speciality matches case-insensitively.
func listQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if sp := strings.TrimSpace(f.Speciality); sp != "" {
		args = append(args, sp)
		where = append(where, "lower(speciality) = lower($"+strconv.Itoa(len(args))+")")
	}
	if f.AvailableOnly {
		where = append(where, "available = TRUE")
	}

	q := `SELECT ` + selectColumns + ` FROM doctors`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, name"
	return q, args
}

func (s *Store) List(ctx context.Context, f Filter) ([]Doctor, error) {
	q, args := listQuery(f)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return out, nil
}

// ToggleAvailability flips the available flag and returns the new value.
func (s *Store) ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	var available bool
	err := s.db.QueryRowContext(ctx,
		`UPDATE doctors SET available = NOT available WHERE id = $1 RETURNING available`, id,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle availability: %w", err)
	}
	return available, nil
}

// UpdateProfile applies the non-nil fields of u.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, u ProfileUpdate) (Doctor, error) {
	if err := u.Validate(); err != nil {
		return Doctor{}, err
	}

	var (
		sets []string
		args = []any{id}
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if u.Fees != nil {
		add("fees", *u.Fees)
	}
	if u.Address != nil {
		add("address_line1", strings.TrimSpace(u.Address.Line1))
		add("address_line2", strings.TrimSpace(u.Address.Line2))
	}
	if u.Available != nil {
		add("available", *u.Available)
	}

	d, err := scanDoctor(s.db.QueryRowContext(ctx,
		`UPDATE doctors SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+selectColumns,
		args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, fmt.Errorf("update doctor: %w", err)
	}
	return d, nil
}

// Delete removes a doctor and returns the deleted record so callers can clean
// up its image.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (Doctor, error) {
	d, err := scanDoctor(s.db.QueryRowContext(ctx,
		`DELETE FROM doctors WHERE id = $1 RETURNING `+selectColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, fmt.Errorf("delete doctor: %w", err)
	}
	return d, nil
}
