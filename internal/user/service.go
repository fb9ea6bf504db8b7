package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tweet_handler/internal/apperr"
	"tweet_handler/internal/auth"
	"tweet_handler/internal/cache"
	"tweet_handler/internal/utils"

	"github.com/sirupsen/logrus"
)

// FeedInvalidator drops cached feed entries when the follow graph changes.
// *cache.FeedCache satisfies it.
type FeedInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

type UserService struct {
	repo       UserRepositoryInterface
	followRepo FollowRepositoryInterface
	db         *sql.DB
	feedCache  FeedInvalidator
}

type UserServiceInterface interface {
	Register(username, password, name, gender string) (int, error)
	Login(username, password, jwtSecret string) (string, error)
	Following(userID int) ([]string, error)
	Followers(userID int) ([]string, error)
	Follow(userID int, targetUsername string) error
	Unfollow(userID int, targetUsername string) error
}

func NewUserService(repo UserRepositoryInterface, followRepo FollowRepositoryInterface, db *sql.DB, feedCache FeedInvalidator) UserServiceInterface {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		db:         db,
		feedCache:  feedCache,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *UserService) Register(username, password, name, gender string) (int, error) {
	if len(password) < auth.MinPasswordLength {
		return 0, fmt.Errorf("%w: password is too short", apperr.ErrInvalidInput)
	}

	existing, err := s.repo.GetByUsername(s.db, username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.ErrUsernameTaken
	}

	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		return 0, err
	}

	u := &User{
		Username: username,
		Password: hashedPassword,
		Name:     name,
		Gender:   gender,
	}

	var id int
	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		id, err = s.repo.Create(tx, u)
		return err
	}); err != nil {
		return 0, err
	}

	return id, nil
}

// Login validates credentials and issues a signed bearer token. An unknown
// username and a wrong password both come back as invalid credentials; a
// failing store does not.
func (s *UserService) Login(username, password, jwtSecret string) (string, error) {
	u, err := s.repo.GetByUsername(s.db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}

	if err := auth.ComparePasswordHash([]byte(u.Password), password); err != nil {
		return "", apperr.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, u.Username, jwtSecret)
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", err
	}

	return token, nil
}

// Following returns the display names of users the caller follows.
func (s *UserService) Following(userID int) ([]string, error) {
	return s.repo.ListFollowingNames(s.db, userID)
}

// Followers returns the display names of users following the caller.
func (s *UserService) Followers(userID int) ([]string, error) {
	return s.repo.ListFollowerNames(s.db, userID)
}

// Follow creates a follow edge from the caller to targetUsername.
// Following yourself is rejected; following twice is a no-op.
func (s *UserService) Follow(userID int, targetUsername string) error {
	target, err := s.repo.GetByUsername(s.db, targetUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %s", apperr.ErrNotFound, targetUsername)
		}
		return err
	}

	if target.ID == userID {
		return fmt.Errorf("%w: cannot follow yourself", apperr.ErrInvalidInput)
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.followRepo.Create(tx, userID, target.ID)
	}); err != nil {
		return err
	}

	s.invalidateFeed(userID)
	return nil
}

// Unfollow removes the follow edge from the caller to targetUsername.
func (s *UserService) Unfollow(userID int, targetUsername string) error {
	target, err := s.repo.GetByUsername(s.db, targetUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %s", apperr.ErrNotFound, targetUsername)
		}
		return err
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.followRepo.Delete(tx, userID, target.ID)
	}); err != nil {
		return err
	}

	s.invalidateFeed(userID)
	return nil
}

// invalidateFeed drops the caller's cached feed after the follow graph
// changed, so the next read reflects the new edge set instead of waiting
// out the cache TTL.
func (s *UserService) invalidateFeed(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.feedCache.Delete(ctx, cache.FeedKey(userID)); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate feed cache")
	}
}
