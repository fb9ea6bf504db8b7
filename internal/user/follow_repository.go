package user

import (
	"database/sql"

	"github.com/sirupsen/logrus"
)

type FollowRepository struct{}

type FollowRepositoryInterface interface {
	Create(tx *sql.Tx, followerUserID, followingUserID int) error
	Delete(tx *sql.Tx, followerUserID, followingUserID int) error
	Exists(db *sql.DB, followerUserID, followingUserID int) (bool, error)
	ListFollowerIDs(db *sql.DB, userID int) ([]int, error)
}

func NewFollowRepository() FollowRepositoryInterface {
	return &FollowRepository{}
}

// Create inserts a follow edge. Re-following is a no-op thanks to the
// composite unique constraint.
func (r *FollowRepository) Create(tx *sql.Tx, followerUserID, followingUserID int) error {
	query := `
		INSERT INTO followers (follower_user_id, following_user_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_user_id, following_user_id) DO NOTHING
	`

	if _, err := tx.Exec(query, followerUserID, followingUserID); err != nil {
		logrus.WithError(err).Error("Failed to create follow edge")
		return err
	}

	return nil
}

// Delete removes a follow edge. Removing a missing edge is a no-op.
func (r *FollowRepository) Delete(tx *sql.Tx, followerUserID, followingUserID int) error {
	query := `
		DELETE FROM followers
		WHERE follower_user_id = $1 AND following_user_id = $2
	`

	if _, err := tx.Exec(query, followerUserID, followingUserID); err != nil {
		logrus.WithError(err).Error("Failed to delete follow edge")
		return err
	}

	return nil
}

// Exists reports whether followerUserID follows followingUserID.
func (r *FollowRepository) Exists(db *sql.DB, followerUserID, followingUserID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM followers
			WHERE follower_user_id = $1 AND following_user_id = $2
		)
	`

	var exists bool
	if err := db.QueryRow(query, followerUserID, followingUserID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ListFollowerIDs returns the ids of all users following userID. The worker
// uses this to invalidate follower feed caches.
func (r *FollowRepository) ListFollowerIDs(db *sql.DB, userID int) ([]int, error) {
	query := `
		SELECT follower_user_id
		FROM followers
		WHERE following_user_id = $1
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			logrus.Error("Error scanning follower row: ", err)
			continue
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
