package tweet

import "time"

// DateTimeLayout renders timestamps at second precision, in UTC.
const DateTimeLayout = "2006-01-02 15:04:05"

type Tweet struct {
	ID       int
	UserID   int
	Tweet    string
	DateTime time.Time
}

// FeedRow is one feed entry as read from the store.
type FeedRow struct {
	Username string
	Tweet    string
	DateTime time.Time
}

// TweetStats carries the like/reply counts of a single tweet. Cached in
// Redis under cache.TweetStatsKey.
type TweetStats struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
}

// MyTweetRow is one of the caller's own tweets with its counts.
type MyTweetRow struct {
	Tweet    string
	Likes    int
	Replies  int
	DateTime time.Time
}

// ReplyRow is one reply to a tweet.
type ReplyRow struct {
	Username string `json:"username"`
	Reply    string `json:"reply"`
}

// Event types published to the tweet_events queue.
const (
	EventTweetCreated = "tweet_created"
	EventTweetDeleted = "tweet_deleted"
	EventLikeCreated  = "like_created"
	EventReplyCreated = "reply_created"
)

// Event tells the worker which tweet changed and whose followers' feed
// caches are stale because of it.
type Event struct {
	Type     string `json:"type"`
	TweetID  int    `json:"tweet_id"`
	AuthorID int    `json:"author_id"`
}
