package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"tweet_handler/internal/cache"
	"tweet_handler/internal/observability"
	"tweet_handler/internal/queue"
	"tweet_handler/internal/tweet"
	"tweet_handler/internal/user"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartWorker consumes tweet_events and drops the Redis cache entries each
// event makes stale: the stats key of the tweet and the feed keys of the
// author's followers.
func StartWorker(conn *amqp.Connection, db *sql.DB, followRepo user.FollowRepositoryInterface, feedCache *cache.FeedCache, id int) {
	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Worker %d failed to open channel: %v", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logrus.Fatalf("Worker %d failed to set QoS: %v", id, err)
	}

	msgs, err := ch.Consume(
		queue.TweetEventsQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Worker %d failed to start consuming messages: %v", id, err)
		return
	}

	logrus.Infof("Worker %d started", id)

	for msg := range msgs {
		observability.GlobalMetrics.QueueMessagesConsumed.WithLabelValues(queue.TweetEventsQueue).Inc()

		var event tweet.Event
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logrus.Error("invalid event payload")
			msg.Nack(false, false)
			continue
		}

		logrus.Infof(
			"Worker %d processing event=%s tweet=%d author=%d",
			id,
			event.Type,
			event.TweetID,
			event.AuthorID,
		)

		if err := invalidate(db, followRepo, feedCache, &event); err != nil {
			logrus.WithError(err).Error("Failed to invalidate caches")
			observability.GlobalMetrics.EventsProcessedTotal.WithLabelValues(event.Type, "failed").Inc()

			// Requeue once; a second failure drops the message and the
			// cache TTL picks up the slack.
			msg.Nack(false, !msg.Redelivered)
			continue
		}

		observability.GlobalMetrics.EventsProcessedTotal.WithLabelValues(event.Type, "success").Inc()
		msg.Ack(false)
	}
}

func invalidate(db *sql.DB, followRepo user.FollowRepositoryInterface, feedCache *cache.FeedCache, event *tweet.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	keys := []string{cache.TweetStatsKey(event.TweetID)}

	// Tweets land in follower feeds; likes and replies only change counts.
	if event.Type == tweet.EventTweetCreated || event.Type == tweet.EventTweetDeleted {
		followerIDs, err := followRepo.ListFollowerIDs(db, event.AuthorID)
		if err != nil {
			return err
		}
		for _, followerID := range followerIDs {
			keys = append(keys, cache.FeedKey(followerID))
		}
	}

	return feedCache.Delete(ctx, keys...)
}
