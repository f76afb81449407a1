package authz

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Role string

const (
	RoleNone       Role = "none"
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var ErrNotFound = errors.New("user not found")

func rank(r Role) int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// Highest picks the winning role when a user holds several.
func Highest(roles []Role) Role {
	best := RoleNone
	for _, r := range roles {
		if rank(r) > rank(best) {
			best = r
		}
	}
	return best
}

// Scope is the location restriction attached to a request after the gate ran.
// Super admins get All=true; plain admins get the set of locations they are
// assigned to, possibly empty.
type Scope struct {
	All         bool
	LocationIDs []string
}

func (s Scope) Empty() bool { return !s.All && len(s.LocationIDs) == 0 }

func (s Scope) Allows(locationID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

// AdminListing is one row of the denormalized admin+assignment view returned
// by the super_admin_list_admins database routine.
type AdminListing struct {
	UserID       string  `json:"user_id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	LocationID   *string `json:"location_id,omitempty"`
	LocationName *string `json:"location_name,omitempty"`
}

type Repository interface {
	RolesOf(ctx context.Context, userID string) ([]Role, error)
	LocationsOf(ctx context.Context, userID string) ([]string, error)
	GrantRole(ctx context.Context, userID string, role Role) error
	AssignLocation(ctx context.Context, adminUserID, locationID string) error
	ListAdmins(ctx context.Context) ([]AdminListing, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) RolesOf(ctx context.Context, userID string) ([]Role, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT role FROM user_roles WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, Role(role))
	}
	return out, rows.Err()
}

func (r *PGRepo) LocationsOf(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT location_id FROM admin_locations WHERE admin_user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GrantRole is idempotent: granting a role the user already holds is a no-op.
func (r *PGRepo) GrantRole(ctx context.Context, userID string, role Role) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, userID, string(role))
	return err
}

func (r *PGRepo) AssignLocation(ctx context.Context, adminUserID, locationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_locations (admin_user_id, location_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, adminUserID, locationID)
	return err
}

func (r *PGRepo) ListAdmins(ctx context.Context) ([]AdminListing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT user_id, email, full_name, location_id, location_name
		FROM super_admin_list_admins()
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminListing
	for rows.Next() {
		var a AdminListing
		if err := rows.Scan(&a.UserID, &a.Email, &a.FullName, &a.LocationID, &a.LocationName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
