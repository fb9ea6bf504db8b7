package user

import (
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

type UserRepository struct{}

type UserRepositoryInterface interface {
	Create(tx *sql.Tx, user *User) (int, error)
	GetByID(db *sql.DB, id int) (*User, error)
	GetByUsername(db *sql.DB, username string) (*User, error)
	ListFollowingNames(db *sql.DB, userID int) ([]string, error)
	ListFollowerNames(db *sql.DB, userID int) ([]string, error)
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

// Create inserts a new user.
func (r *UserRepository) Create(
	tx *sql.Tx,
	user *User,
) (int, error) {
	query := `
		INSERT INTO users (
			username, password, name, gender, created_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`

	var id int
	err := tx.QueryRow(
		query,
		user.Username,
		user.Password,
		user.Name,
		user.Gender,
	).Scan(&id)

	if err != nil {
		logrus.WithError(err).Error("Failed to create user")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  id,
		"username": user.Username,
	}).Info("User created")

	return id, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(db *sql.DB, id int) (*User, error) {
	query := `
		SELECT id, username, password, name, gender, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(db.QueryRow(query, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(db *sql.DB, username string) (*User, error) {
	query := `
		SELECT id, username, password, name, gender, created_at
		FROM users
		WHERE username = $1
	`

	return r.scanUser(db.QueryRow(query, username))
}

func (r *UserRepository) scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Name,
		&user.Gender,
		&user.CreatedAt,
	)

	if err != nil {
		// sql.ErrNoRows passes through so callers can tell a missing
		// user from a failing store.
		if !errors.Is(err, sql.ErrNoRows) {
			logrus.WithError(err).Error("Failed to get user")
		}
		return nil, err
	}

	return user, nil
}

// ListFollowingNames returns the display names of the users userID follows.
func (r *UserRepository) ListFollowingNames(db *sql.DB, userID int) ([]string, error) {
	query := `
		SELECT u.name
		FROM followers f
		JOIN users u ON f.following_user_id = u.id
		WHERE f.follower_user_id = $1
		ORDER BY u.name
	`

	return r.listNames(db, query, userID)
}

// ListFollowerNames returns the display names of the users following userID.
func (r *UserRepository) ListFollowerNames(db *sql.DB, userID int) ([]string, error) {
	query := `
		SELECT u.name
		FROM followers f
		JOIN users u ON f.follower_user_id = u.id
		WHERE f.following_user_id = $1
		ORDER BY u.name
	`

	return r.listNames(db, query, userID)
}

func (r *UserRepository) listNames(db *sql.DB, query string, userID int) ([]string, error) {
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			logrus.Error("Error scanning name row: ", err)
			continue
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
