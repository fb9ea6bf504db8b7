package user

import (
	"net/http"

	"tweet_handler/internal/apperr"
	"tweet_handler/internal/auth"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceInterface
	jwtSecret   string
}

func NewUserController(userService UserServiceInterface, jwtSecret string) *UserController {
	return &UserController{
		userService: userService,
		jwtSecret:   jwtSecret,
	}
}

// Register handles user registration
func (a *UserController) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=50"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required,max=100"`
		Gender   string `json:"gender" binding:"required,max=20"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := a.userService.Register(req.Username, req.Password, req.Name, req.Gender); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "User created successfully")
}

// Login handles user login and returns a bearer token
func (a *UserController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, err := a.userService.Login(req.Username, req.Password, a.jwtSecret)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Following lists the display names of users the caller follows
func (a *UserController) Following(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	names, err := a.userService.Following(userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, nameList(names))
}

// Followers lists the display names of users who follow the caller
func (a *UserController) Followers(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	names, err := a.userService.Followers(userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, nameList(names))
}

// Follow creates a follow edge from the caller to the given username
func (a *UserController) Follow(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := a.userService.Follow(userID, req.Username); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Following "+req.Username)
}

// Unfollow removes the caller's follow edge to the given username
func (a *UserController) Unfollow(c *gin.Context) {
	username := c.Param("username")

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := a.userService.Unfollow(userID, username); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.String(http.StatusOK, "Unfollowed "+username)
}

// nameList shapes display names as [{name}] the way the API contract expects.
func nameList(names []string) []gin.H {
	out := make([]gin.H, 0, len(names))
	for _, n := range names {
		out = append(out, gin.H{"name": n})
	}
	return out
}
