package models

import "time"

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID             string    `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Bio            string    `db:"bio" json:"bio"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture"`
	CoverPhoto     string    `db:"cover_photo" json:"cover_photo"`
	Location       string    `db:"location" json:"location"`
	Website        string    `db:"website" json:"website"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the public slice of a user embedded in other payloads.
type UserSummary struct {
	ID             string `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	ProfilePicture string `db:"profile_picture" json:"profile_picture"`
	IsVerified     bool   `db:"is_verified" json:"is_verified"`
}

// ProfileStats aggregates the counters shown on a profile page.
type ProfileStats struct {
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
	ProfilePicture *string `json:"profile_picture"`
	CoverPhoto     *string `json:"cover_photo"`
}
