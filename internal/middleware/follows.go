package middleware

import (
	"database/sql"
	"net/http"
	"strconv"

	"tweet_handler/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TweetAuthors resolves a tweet to its author.
type TweetAuthors interface {
	GetAuthorID(db *sql.DB, tweetID int) (int, error)
}

// FollowEdges answers whether a directed follow edge exists.
type FollowEdges interface {
	Exists(db *sql.DB, followerUserID, followingUserID int) (bool, error)
}

// FollowGate restricts single-tweet endpoints to callers that follow the
// tweet's author. A missing tweet is 404; a missing follow edge is 403.
// The author may always access their own tweet.
func FollowGate(db *sql.DB, tweets TweetAuthors, follows FollowEdges) gin.HandlerFunc {
	return func(c *gin.Context) {
		tweetID, err := strconv.Atoi(c.Param("tweetId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tweet ID"})
			c.Abort()
			return
		}

		userID, err := auth.GetUserIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		authorID, err := tweets.GetAuthorID(db, tweetID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Tweet not found"})
			} else {
				logrus.WithError(err).Error("Failed to resolve tweet author")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			c.Abort()
			return
		}

		if authorID != userID {
			ok, err := follows.Exists(db, userID, authorID)
			if err != nil {
				logrus.WithError(err).Error("Failed to check follow edge")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				c.Abort()
				return
			}
			if !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "You do not follow this tweet's author"})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
