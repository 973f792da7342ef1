package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already taken")
)

const userColumns = `id, username, email, password_hash, bio, profile_picture,
    cover_photo, location, website, is_verified, created_at`

const userSummaryColumns = `id, username, profile_picture, is_verified`

// UserRepository owns accounts and the follow graph. The rest of the service
// treats user ids as opaque strings; only this repository knows they are UUIDs
// minted at registration.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	BulkSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Followers(ctx context.Context, userID string) ([]models.UserSummary, error)
	Following(ctx context.Context, userID string) ([]models.UserSummary, error)
	FollowCounts(ctx context.Context, userID string) (followers, following int64, err error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser registers a new account with a freshly minted id.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`, username, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUserExists
	}

	var user models.User
	err = r.db.GetContext(ctx, &user, `INSERT INTO users (id, username, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING `+userColumns, uuid.NewString(), username, email, passwordHash)
	return user, err
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByLogin fetches a user by username or email.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile applies the non-nil fields of update and returns the result.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET
        bio = COALESCE($2, bio),
        location = COALESCE($3, location),
        website = COALESCE($4, website),
        profile_picture = COALESCE($5, profile_picture),
        cover_photo = COALESCE($6, cover_photo)
        WHERE id = $1
        RETURNING `+userColumns,
		userID, update.Bio, update.Location, update.Website, update.ProfilePicture, update.CoverPhoto)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SearchUsers matches username or email case-insensitively.
func (r *UserRepo) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.SelectContext(ctx, &users, `SELECT `+userSummaryColumns+` FROM users
        WHERE username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
        ORDER BY username
        LIMIT $2`, query, limit)
	return users, err
}

// BulkSummaries fetches public summaries for a set of user ids.
func (r *UserRepo) BulkSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error) {
	if len(userIDs) == 0 {
		return []models.UserSummary{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+userSummaryColumns+` FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	var users []models.UserSummary
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, err
}

// IsFollowing reports whether follower currently follows followee.
func (r *UserRepo) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID)
	return exists, err
}

// Follow records a follow edge; re-following is a no-op.
func (r *UserRepo) Follow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO follows (follower_id, followee_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`, followerID, followeeID)
	return err
}

// Unfollow removes a follow edge if present.
func (r *UserRepo) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

// Followers lists the users following userID.
func (r *UserRepo) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.username, u.profile_picture, u.is_verified
        FROM follows f JOIN users u ON u.id = f.follower_id
        WHERE f.followee_id = $1
        ORDER BY f.created_at DESC`, userID)
	return users, err
}

// Following lists the users userID follows.
func (r *UserRepo) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.username, u.profile_picture, u.is_verified
        FROM follows f JOIN users u ON u.id = f.followee_id
        WHERE f.follower_id = $1
        ORDER BY f.created_at DESC`, userID)
	return users, err
}

// FollowCounts returns follower and following totals for a user.
func (r *UserRepo) FollowCounts(ctx context.Context, userID string) (int64, int64, error) {
	var counts struct {
		Followers int64 `db:"followers"`
		Following int64 `db:"following"`
	}
	err := r.db.GetContext(ctx, &counts, `SELECT
        (SELECT COUNT(*) FROM follows WHERE followee_id = $1) AS followers,
        (SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following`, userID)
	return counts.Followers, counts.Following, err
}
