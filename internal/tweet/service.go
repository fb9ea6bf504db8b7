package tweet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tweet_handler/internal/apperr"
	"tweet_handler/internal/cache"
	"tweet_handler/internal/observability"
	"tweet_handler/internal/queue"
	"tweet_handler/internal/utils"

	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// FeedLimit caps the feed at the latest entries from followed users.
const FeedLimit = 4

type TweetServiceInterface interface {
	Feed(userID int) ([]*FeedRow, error)
	Detail(tweetID int) (*Tweet, *TweetStats, error)
	Likers(tweetID int) ([]string, error)
	Replies(tweetID int) (*Tweet, []*ReplyRow, error)
	MyTweets(userID int) ([]*MyTweetRow, error)
	Create(userID int, text string) (int, error)
	Delete(userID, tweetID int) error
	Like(userID, tweetID int) error
	Reply(userID, tweetID int, text string) error
}

type TweetService struct {
	repo  TweetRepositoryInterface
	conn  *amqp.Connection
	DB    *sql.DB
	cache *cache.FeedCache
}

func NewTweetService(repo TweetRepositoryInterface, db *sql.DB, conn *amqp.Connection, redisClient *redis.Client) TweetServiceInterface {
	return &TweetService{
		repo:  repo,
		DB:    db,
		conn:  conn,
		cache: cache.NewFeedCache(redisClient),
	}
}

// Feed returns the latest FeedLimit tweets from followed users, newest
// first. Read-through cached per user.
func (s *TweetService) Feed(userID int) ([]*FeedRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.FeedKey(userID)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var feed []*FeedRow
		if json.Unmarshal(cachedData, &feed) == nil {
			observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("feed").Inc()
			return feed, nil
		}
	}
	observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("feed").Inc()

	feed, err := s.repo.Feed(s.DB, userID, FeedLimit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, feed); err != nil {
		logrus.WithError(err).Warn("Failed to set feed cache")
	}

	return feed, nil
}

// Detail returns one tweet with its like/reply counts. The counts are
// cached; the tweet row itself is cheap to read.
func (s *TweetService) Detail(tweetID int) (*Tweet, *TweetStats, error) {
	t, err := s.repo.GetByID(s.DB, tweetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: tweet %d", apperr.ErrNotFound, tweetID)
		}
		return nil, nil, err
	}

	stats, err := s.stats(tweetID)
	if err != nil {
		return nil, nil, err
	}

	return t, stats, nil
}

func (s *TweetService) stats(tweetID int) (*TweetStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.TweetStatsKey(tweetID)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var stats TweetStats
		if json.Unmarshal(cachedData, &stats) == nil {
			observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("tweet_stats").Inc()
			return &stats, nil
		}
	}
	observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("tweet_stats").Inc()

	stats, err := s.repo.Stats(s.DB, tweetID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, stats); err != nil {
		logrus.WithError(err).Warn("Failed to set tweet stats cache")
	}

	return stats, nil
}

// Likers returns the usernames of everyone who liked the tweet.
func (s *TweetService) Likers(tweetID int) ([]string, error) {
	if _, err := s.repo.GetAuthorID(s.DB, tweetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tweet %d", apperr.ErrNotFound, tweetID)
		}
		return nil, err
	}

	return s.repo.ListLikers(s.DB, tweetID)
}

// Replies returns the tweet along with all replies to it.
func (s *TweetService) Replies(tweetID int) (*Tweet, []*ReplyRow, error) {
	t, err := s.repo.GetByID(s.DB, tweetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: tweet %d", apperr.ErrNotFound, tweetID)
		}
		return nil, nil, err
	}

	replies, err := s.repo.ListReplies(s.DB, tweetID)
	if err != nil {
		return nil, nil, err
	}

	return t, replies, nil
}

// MyTweets returns the caller's own tweets with their counts.
func (s *TweetService) MyTweets(userID int) ([]*MyTweetRow, error) {
	return s.repo.ListMine(s.DB, userID)
}

// Create inserts a tweet authored by userID, timestamped now in UTC at
// second precision.
func (s *TweetService) Create(userID int, text string) (int, error) {
	at := time.Now().UTC().Truncate(time.Second)

	var id int
	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		var err error
		id, err = s.repo.Create(tx, userID, text, at)
		return err
	}); err != nil {
		return 0, err
	}

	observability.GlobalMetrics.TweetsCreatedTotal.Inc()
	s.publishEvent(EventTweetCreated, id, userID)

	return id, nil
}

// Delete removes the tweet if the caller authored it. A missing tweet and a
// foreign tweet both come back Forbidden, so callers cannot probe which
// tweet ids exist.
func (s *TweetService) Delete(userID, tweetID int) error {
	authorID, err := s.repo.GetAuthorID(s.DB, tweetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: not your tweet", apperr.ErrForbidden)
		}
		return err
	}

	if authorID != userID {
		return fmt.Errorf("%w: not your tweet", apperr.ErrForbidden)
	}

	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		return s.repo.Delete(tx, tweetID)
	}); err != nil {
		return err
	}

	observability.GlobalMetrics.TweetsDeletedTotal.Inc()
	s.publishEvent(EventTweetDeleted, tweetID, userID)

	return nil
}

// Like records that userID liked the tweet. Liking twice is a no-op.
func (s *TweetService) Like(userID, tweetID int) error {
	authorID, err := s.repo.GetAuthorID(s.DB, tweetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: tweet %d", apperr.ErrNotFound, tweetID)
		}
		return err
	}

	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		return s.repo.InsertLike(tx, tweetID, userID)
	}); err != nil {
		return err
	}

	observability.GlobalMetrics.LikesCreatedTotal.Inc()
	s.publishEvent(EventLikeCreated, tweetID, authorID)

	return nil
}

// Reply records a reply by userID to the tweet.
func (s *TweetService) Reply(userID, tweetID int, text string) error {
	authorID, err := s.repo.GetAuthorID(s.DB, tweetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: tweet %d", apperr.ErrNotFound, tweetID)
		}
		return err
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		return s.repo.InsertReply(tx, tweetID, userID, text, at)
	}); err != nil {
		return err
	}

	observability.GlobalMetrics.RepliesCreatedTotal.Inc()
	s.publishEvent(EventReplyCreated, tweetID, authorID)

	return nil
}

// publishEvent tells the worker which caches went stale. Best effort: feed
// caches also expire by TTL, so a lost event degrades freshness, not
// correctness.
func (s *TweetService) publishEvent(eventType string, tweetID, authorID int) {
	ch, err := queue.CreateChannel(s.conn)
	if err != nil {
		logrus.WithError(err).Warn("Failed to open channel for event publish")
		return
	}
	defer ch.Close()

	body, err := json.Marshal(Event{
		Type:     eventType,
		TweetID:  tweetID,
		AuthorID: authorID,
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal event")
		return
	}

	err = ch.Publish(
		"",
		queue.TweetEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		logrus.WithError(err).Warn("Failed to publish event")
		return
	}

	observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.TweetEventsQueue).Inc()
}
