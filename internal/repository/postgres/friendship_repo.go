package postgres

import (
	"context"
	"errors"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const friendshipColumns = `f.id, f.requester_id, f.addressee_id, f.status, f.created_at, f.responded_at`

// populatedFriendshipSelect joins both participants' profiles so callers
// rarely need a second lookup.
var populatedFriendshipSelect = `SELECT ` + friendshipColumns + `, ` + userColumns("r") + `, ` + userColumns("a") + `
	FROM friendships f
	LEFT JOIN users r ON r.id = f.requester_id
	LEFT JOIN users a ON a.id = f.addressee_id`

type friendshipRepo struct {
	db *pgxpool.Pool
}

func NewFriendshipRepository(db *pgxpool.Pool) domain.FriendshipRepository {
	return &friendshipRepo{db: db}
}

func (r *friendshipRepo) AcceptedForUser(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	query := populatedFriendshipSelect + `
		WHERE f.status = 'accepted' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY f.created_at ASC, f.id ASC`
	return r.queryPopulated(ctx, query, string(id))
}

func (r *friendshipRepo) AllForUser(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships f
		WHERE f.requester_id = $1 OR f.addressee_id = $1`
	rows, err := r.db.Query(ctx, query, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *friendshipRepo) AcceptedForUsers(ctx context.Context, ids []domain.UserID) ([]*domain.Friendship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := populatedFriendshipSelect + `
		WHERE f.status = 'accepted'
		  AND (f.requester_id = ANY($1::uuid[]) OR f.addressee_id = ANY($1::uuid[]))
		ORDER BY f.created_at ASC, f.id ASC`
	return r.queryPopulated(ctx, query, pq.Array(idStrings(ids)))
}

func (r *friendshipRepo) PendingForAddressee(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	query := populatedFriendshipSelect + `
		WHERE f.status = 'pending' AND f.addressee_id = $1
		ORDER BY f.created_at DESC, f.id DESC`
	return r.queryPopulated(ctx, query, string(id))
}

func (r *friendshipRepo) GetByID(ctx context.Context, id string) (*domain.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships f WHERE f.id = $1`
	f, err := scanFriendship(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// GetPair returns the most recent row between a and b in either direction.
func (r *friendshipRepo) GetPair(ctx context.Context, a, b domain.UserID) (*domain.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships f
		WHERE (f.requester_id = $1 AND f.addressee_id = $2)
		   OR (f.requester_id = $2 AND f.addressee_id = $1)
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT 1`
	f, err := scanFriendship(r.db.QueryRow(ctx, query, string(a), string(b)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (r *friendshipRepo) Create(ctx context.Context, f *domain.Friendship) error {
	query := `INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, f.ID, string(f.RequesterID), string(f.AddresseeID), string(f.Status), f.CreatedAt, f.RespondedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("A relationship with this user already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *friendshipRepo) Update(ctx context.Context, f *domain.Friendship) error {
	query := `UPDATE friendships
		SET requester_id = $2, addressee_id = $3, status = $4, created_at = $5, responded_at = $6
		WHERE id = $1`
	_, err := r.db.Exec(ctx, query, f.ID, string(f.RequesterID), string(f.AddresseeID), string(f.Status), f.CreatedAt, f.RespondedAt)
	return err
}

func (r *friendshipRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	return err
}

func (r *friendshipRepo) queryPopulated(ctx context.Context, query string, args ...any) ([]*domain.Friendship, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		var requesterID, addresseeID, status string
		var requester, addressee nullableUser

		dest := []any{&f.ID, &requesterID, &addresseeID, &status, &f.CreatedAt, &f.RespondedAt}
		dest = append(dest, requester.dest()...)
		dest = append(dest, addressee.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		f.RequesterID = domain.UserID(requesterID)
		f.AddresseeID = domain.UserID(addresseeID)
		f.Status = domain.FriendshipStatus(status)
		f.Requester = requester.user()
		f.Addressee = addressee.user()
		out = append(out, &f)
	}
	return out, rows.Err()
}

func scanFriendship(row pgx.Row) (*domain.Friendship, error) {
	var f domain.Friendship
	var requesterID, addresseeID, status string
	if err := row.Scan(&f.ID, &requesterID, &addresseeID, &status, &f.CreatedAt, &f.RespondedAt); err != nil {
		return nil, err
	}
	f.RequesterID = domain.UserID(requesterID)
	f.AddresseeID = domain.UserID(addresseeID)
	f.Status = domain.FriendshipStatus(status)
	return &f, nil
}
