package tweet

import (
	"net/http"
	"strconv"

	"tweet_handler/internal/apperr"
	"tweet_handler/internal/auth"

	"github.com/gin-gonic/gin"
)

type TweetController struct {
	service TweetServiceInterface
}

func NewTweetController(service TweetServiceInterface) *TweetController {
	return &TweetController{
		service: service,
	}
}

// Feed returns the latest tweets from users the caller follows
func (tc *TweetController) Feed(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	feed, err := tc.service.Feed(userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	out := make([]gin.H, 0, len(feed))
	for _, fr := range feed {
		out = append(out, gin.H{
			"username": fr.Username,
			"tweet":    fr.Tweet,
			"dateTime": fr.DateTime.Format(DateTimeLayout),
		})
	}

	c.JSON(http.StatusOK, out)
}

// Detail returns one tweet with its like/reply counts
func (tc *TweetController) Detail(c *gin.Context) {
	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	t, stats, err := tc.service.Detail(tweetID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tweet":    t.Tweet,
		"likes":    stats.Likes,
		"replies":  stats.Replies,
		"dateTime": t.DateTime.Format(DateTimeLayout),
	})
}

// Likes returns the usernames of everyone who liked the tweet
func (tc *TweetController) Likes(c *gin.Context) {
	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	likers, err := tc.service.Likers(tweetID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if likers == nil {
		likers = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"likes": likers})
}

// Replies returns the tweet together with all replies to it
func (tc *TweetController) Replies(c *gin.Context) {
	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	t, replies, err := tc.service.Replies(tweetID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if replies == nil {
		replies = []*ReplyRow{}
	}

	c.JSON(http.StatusOK, gin.H{
		"tweet": gin.H{
			"tweet":    t.Tweet,
			"dateTime": t.DateTime.Format(DateTimeLayout),
		},
		"replies": replies,
	})
}

// MyTweets returns the caller's own tweets with like/reply counts
func (tc *TweetController) MyTweets(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tweets, err := tc.service.MyTweets(userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	out := make([]gin.H, 0, len(tweets))
	for _, mt := range tweets {
		out = append(out, gin.H{
			"tweet":    mt.Tweet,
			"likes":    mt.Likes,
			"replies":  mt.Replies,
			"dateTime": mt.DateTime.Format(DateTimeLayout),
		})
	}

	c.JSON(http.StatusOK, out)
}

// Create inserts a new tweet authored by the caller
func (tc *TweetController) Create(c *gin.Context) {
	var req struct {
		Tweet string `json:"tweet" binding:"required,max=280"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if _, err := tc.service.Create(userID, req.Tweet); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Created a Tweet")
}

// Delete removes the caller's own tweet
func (tc *TweetController) Delete(c *gin.Context) {
	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := tc.service.Delete(userID, tweetID); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Tweet Removed")
}

// Like records the caller liking the tweet
func (tc *TweetController) Like(c *gin.Context) {
	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := tc.service.Like(userID, tweetID); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Liked the Tweet")
}

// Reply records the caller's reply to the tweet
func (tc *TweetController) Reply(c *gin.Context) {
	var req struct {
		Reply string `json:"reply" binding:"required,max=280"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tweetID, ok := tweetIDParam(c)
	if !ok {
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := tc.service.Reply(userID, tweetID, req.Reply); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Replied to the Tweet")
}

func tweetIDParam(c *gin.Context) (int, bool) {
	tweetID, err := strconv.Atoi(c.Param("tweetId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tweet ID"})
		return 0, false
	}
	return tweetID, true
}
