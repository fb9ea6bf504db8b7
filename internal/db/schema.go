package db

import (
	"database/sql"

	"github.com/sirupsen/logrus"
)

// schema holds the full relational model: users, tweets, the directed follow
// graph, likes, and replies. Statements are idempotent so EnsureSchema can
// run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         SERIAL PRIMARY KEY,
		username   VARCHAR(50) UNIQUE NOT NULL,
		password   VARCHAR(100) NOT NULL,
		name       VARCHAR(100) NOT NULL,
		gender     VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tweets (
		id        SERIAL PRIMARY KEY,
		user_id   INT NOT NULL REFERENCES users(id),
		tweet     TEXT NOT NULL,
		date_time TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS followers (
		id                 SERIAL PRIMARY KEY,
		follower_user_id   INT NOT NULL REFERENCES users(id),
		following_user_id  INT NOT NULL REFERENCES users(id),
		UNIQUE (follower_user_id, following_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id       SERIAL PRIMARY KEY,
		tweet_id INT NOT NULL REFERENCES tweets(id) ON DELETE CASCADE,
		user_id  INT NOT NULL REFERENCES users(id),
		UNIQUE (tweet_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS replies (
		id        SERIAL PRIMARY KEY,
		tweet_id  INT NOT NULL REFERENCES tweets(id) ON DELETE CASCADE,
		user_id   INT NOT NULL REFERENCES users(id),
		reply     TEXT NOT NULL,
		date_time TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tweets_user_date ON tweets (user_id, date_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_followers_follower ON followers (follower_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_followers_following ON followers (following_user_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			logrus.WithError(err).Error("Failed to apply schema statement")
			return err
		}
	}
	logrus.Info("Database schema ensured")
	return nil
}
