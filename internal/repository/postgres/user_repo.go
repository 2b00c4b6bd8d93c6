package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

// userColumns lists the profile columns of table alias t in the order
// scanUser and nullableUser.dest expect.
func userColumns(t string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.display_name, %[1]s.handle, COALESCE(%[1]s.profile_picture, ''),
		COALESCE(%[1]s.location, ''), COALESCE(%[1]s.region, ''), %[1]s.favorite_species, %[1]s.is_public,
		%[1]s.created_at, %[1]s.updated_at`, t)
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	query := `SELECT ` + userColumns("u") + ` FROM users u WHERE u.id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindByFilter resolves many users in one round trip.
func (r *userRepo) FindByFilter(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	if len(filter.IDs) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + userColumns("u") + ` FROM users u WHERE u.id = ANY($1::uuid[])`)
	if filter.PublicOnly {
		sb.WriteString(` AND u.is_public = TRUE`)
	}
	sb.WriteString(` ORDER BY u.handle ASC, u.id ASC`)
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(` LIMIT %d`, filter.Limit))
	}

	rows, err := r.db.Query(ctx, sb.String(), pq.Array(idStrings(filter.IDs)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
		SET display_name = $2, handle = $3, profile_picture = NULLIF($4, ''), location = NULLIF($5, ''),
		    region = NULLIF($6, ''), favorite_species = $7, is_public = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		string(user.ID), user.DisplayName, user.Handle, user.ProfilePicture, user.Location,
		user.Region, pq.Array(user.FavoriteSpecies), user.IsPublic, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("Handle is already taken")
		}
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var id string
	var species []string
	err := row.Scan(
		&id, &u.DisplayName, &u.Handle, &u.ProfilePicture, &u.Location,
		&u.Region, pq.Array(&species), &u.IsPublic, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID = domain.UserID(id)
	u.FavoriteSpecies = species
	return &u, nil
}

// nullableUser receives the LEFT JOINed side of a friendship row.
type nullableUser struct {
	id             *string
	displayName    *string
	handle         *string
	profilePicture *string
	location       *string
	region         *string
	species        []string
	isPublic       *bool
	createdAt      *time.Time
	updatedAt      *time.Time
}

func (n *nullableUser) dest() []any {
	return []any{
		&n.id, &n.displayName, &n.handle, &n.profilePicture, &n.location,
		&n.region, pq.Array(&n.species), &n.isPublic, &n.createdAt, &n.updatedAt,
	}
}

// user returns nil when the join found no row.
func (n *nullableUser) user() *domain.User {
	if n.id == nil {
		return nil
	}
	return &domain.User{
		ID:              domain.UserID(*n.id),
		DisplayName:     deref(n.displayName),
		Handle:          deref(n.handle),
		ProfilePicture:  deref(n.profilePicture),
		Location:        deref(n.location),
		Region:          deref(n.region),
		FavoriteSpecies: n.species,
		IsPublic:        n.isPublic != nil && *n.isPublic,
		CreatedAt:       derefTime(n.createdAt),
		UpdatedAt:       derefTime(n.updatedAt),
	}
}

func idStrings(ids []domain.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
