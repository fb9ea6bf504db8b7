package tweet

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
)

type TweetRepository struct{}

type TweetRepositoryInterface interface {
	Create(tx *sql.Tx, userID int, text string, at time.Time) (int, error)
	GetAuthorID(db *sql.DB, tweetID int) (int, error)
	GetByID(db *sql.DB, tweetID int) (*Tweet, error)
	Delete(tx *sql.Tx, tweetID int) error
	Feed(db *sql.DB, userID, limit int) ([]*FeedRow, error)
	ListMine(db *sql.DB, userID int) ([]*MyTweetRow, error)
	Stats(db *sql.DB, tweetID int) (*TweetStats, error)
	ListLikers(db *sql.DB, tweetID int) ([]string, error)
	ListReplies(db *sql.DB, tweetID int) ([]*ReplyRow, error)
	InsertLike(tx *sql.Tx, tweetID, userID int) error
	InsertReply(tx *sql.Tx, tweetID, userID int, text string, at time.Time) error
}

func NewTweetRepository() TweetRepositoryInterface {
	return &TweetRepository{}
}

func (r *TweetRepository) Create(
	tx *sql.Tx,
	userID int,
	text string,
	at time.Time,
) (int, error) {
	query := `
		INSERT INTO tweets (user_id, tweet, date_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int
	err := tx.QueryRow(query, userID, text, at).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetAuthorID returns the author of tweetID, or sql.ErrNoRows if the tweet
// does not exist. The follow gate depends on that sentinel.
func (r *TweetRepository) GetAuthorID(db *sql.DB, tweetID int) (int, error) {
	query := `
		SELECT user_id FROM tweets WHERE id = $1
	`

	var authorID int
	if err := db.QueryRow(query, tweetID).Scan(&authorID); err != nil {
		return 0, err
	}

	return authorID, nil
}

func (r *TweetRepository) GetByID(db *sql.DB, tweetID int) (*Tweet, error) {
	query := `
		SELECT id, user_id, tweet, date_time
		FROM tweets
		WHERE id = $1
	`

	var t Tweet
	err := db.QueryRow(query, tweetID).Scan(
		&t.ID,
		&t.UserID,
		&t.Tweet,
		&t.DateTime,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *TweetRepository) Delete(tx *sql.Tx, tweetID int) error {
	query := `
		DELETE FROM tweets WHERE id = $1
	`
	_, err := tx.Exec(query, tweetID)
	return err
}

// Feed returns the latest tweets from users userID follows, newest first.
// Ties on the timestamp keep insertion order.
func (r *TweetRepository) Feed(db *sql.DB, userID, limit int) ([]*FeedRow, error) {
	query := `
		SELECT u.username, t.tweet, t.date_time
		FROM followers f
		JOIN tweets t ON t.user_id = f.following_user_id
		JOIN users u ON u.id = t.user_id
		WHERE f.follower_user_id = $1
		ORDER BY t.date_time DESC, t.id ASC
		LIMIT $2
	`

	rows, err := db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feed []*FeedRow
	for rows.Next() {
		var fr FeedRow
		if err := rows.Scan(&fr.Username, &fr.Tweet, &fr.DateTime); err != nil {
			logrus.Error("Error scanning feed row: ", err)
			continue
		}
		feed = append(feed, &fr)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return feed, nil
}

// ListMine returns the caller's tweets with like/reply counts, one row per
// tweet. DISTINCT counts keep the two LEFT JOINs from multiplying each other.
func (r *TweetRepository) ListMine(db *sql.DB, userID int) ([]*MyTweetRow, error) {
	query := `
		SELECT
			t.tweet,
			COUNT(DISTINCT l.id) AS likes,
			COUNT(DISTINCT rp.id) AS replies,
			t.date_time
		FROM tweets t
		LEFT JOIN likes l ON t.id = l.tweet_id
		LEFT JOIN replies rp ON t.id = rp.tweet_id
		WHERE t.user_id = $1
		GROUP BY t.id
		ORDER BY t.date_time DESC, t.id ASC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tweets []*MyTweetRow
	for rows.Next() {
		var mt MyTweetRow
		if err := rows.Scan(&mt.Tweet, &mt.Likes, &mt.Replies, &mt.DateTime); err != nil {
			logrus.Error("Error scanning tweet row: ", err)
			continue
		}
		tweets = append(tweets, &mt)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tweets, nil
}

func (r *TweetRepository) Stats(db *sql.DB, tweetID int) (*TweetStats, error) {
	query := `
		SELECT
			(SELECT COUNT(id) FROM likes WHERE tweet_id = $1),
			(SELECT COUNT(id) FROM replies WHERE tweet_id = $1)
	`

	var s TweetStats
	if err := db.QueryRow(query, tweetID).Scan(&s.Likes, &s.Replies); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *TweetRepository) ListLikers(db *sql.DB, tweetID int) ([]string, error) {
	query := `
		SELECT u.username
		FROM likes l
		JOIN users u ON l.user_id = u.id
		WHERE l.tweet_id = $1
		ORDER BY l.id
	`

	rows, err := db.Query(query, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			logrus.Error("Error scanning liker row: ", err)
			continue
		}
		usernames = append(usernames, username)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return usernames, nil
}

func (r *TweetRepository) ListReplies(db *sql.DB, tweetID int) ([]*ReplyRow, error) {
	query := `
		SELECT u.username, rp.reply
		FROM replies rp
		JOIN users u ON rp.user_id = u.id
		WHERE rp.tweet_id = $1
		ORDER BY rp.id
	`

	rows, err := db.Query(query, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []*ReplyRow
	for rows.Next() {
		var rr ReplyRow
		if err := rows.Scan(&rr.Username, &rr.Reply); err != nil {
			logrus.Error("Error scanning reply row: ", err)
			continue
		}
		replies = append(replies, &rr)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return replies, nil
}

// InsertLike records a like. Liking twice is a no-op.
func (r *TweetRepository) InsertLike(tx *sql.Tx, tweetID, userID int) error {
	query := `
		INSERT INTO likes (tweet_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (tweet_id, user_id) DO NOTHING
	`
	_, err := tx.Exec(query, tweetID, userID)
	return err
}

func (r *TweetRepository) InsertReply(tx *sql.Tx, tweetID, userID int, text string, at time.Time) error {
	query := `
		INSERT INTO replies (tweet_id, user_id, reply, date_time)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Exec(query, tweetID, userID, text, at)
	return err
}
