package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tweet_handler/internal/apperr"
	"tweet_handler/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(username, password, name, gender string) (int, error) {
	args := m.Called(username, password, name, gender)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) Login(username, password, jwtSecret string) (string, error) {
	args := m.Called(username, password, jwtSecret)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) Following(userID int) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserService) Followers(userID int) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserService) Follow(userID int, targetUsername string) error {
	args := m.Called(userID, targetUsername)
	return args.Error(0)
}

func (m *MockUserService) Unfollow(userID int, targetUsername string) error {
	args := m.Called(userID, targetUsername)
	return args.Error(0)
}

const testJWTSecret = "controller-test-secret"

func setupTestRouter(service UserServiceInterface) (*gin.Engine, *UserController) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	controller := NewUserController(service, testJWTSecret)

	return router, controller
}

// Helper to add authenticated user to context
func addAuthenticatedUser(c *gin.Context, userID int) {
	c.Set(auth.UserIDKey, userID)
}

func TestRegister_Success(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Register", "alice", "secret1", "Alice", "female").Return(1, nil)

	router.POST("/register/", controller.Register)

	body := `{"username":"alice","password":"secret1","name":"Alice","gender":"female"}`
	req := httptest.NewRequest("POST", "/register/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User created successfully", w.Body.String())

	mockService.AssertExpectations(t)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Register", "alice", "secret1", "Alice", "female").Return(0, apperr.ErrUsernameTaken)

	router.POST("/register/", controller.Register)

	body := `{"username":"alice","password":"secret1","name":"Alice","gender":"female"}`
	req := httptest.NewRequest("POST", "/register/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "username already exists")
}

func TestRegister_ShortPassword(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Register", "alice", "short", "Alice", "female").
		Return(0, fmt.Errorf("%w: password is too short", apperr.ErrInvalidInput))

	router.POST("/register/", controller.Register)

	body := `{"username":"alice","password":"short","name":"Alice","gender":"female"}`
	req := httptest.NewRequest("POST", "/register/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password is too short")
}

func TestRegister_MissingFields(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	router.POST("/register/", controller.Register)

	body := `{"username":"alice"}`
	req := httptest.NewRequest("POST", "/register/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Login", "alice", "secret1", testJWTSecret).Return("signed-token", nil)

	router.POST("/login/", controller.Login)

	body := `{"username":"alice","password":"secret1"}`
	req := httptest.NewRequest("POST", "/login/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "signed-token", response["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Login", "alice", "wrong", testJWTSecret).Return("", apperr.ErrInvalidCredentials)

	router.POST("/login/", controller.Login)

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest("POST", "/login/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestFollowing_ListShape(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Following", 1).Return([]string{"Alice", "Bob"}, nil)

	router.GET("/user/following/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Following(c)
	})

	req := httptest.NewRequest("GET", "/user/following/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response, 2)
	assert.Equal(t, "Alice", response[0]["name"])
	assert.Equal(t, "Bob", response[1]["name"])
}

func TestFollowing_Empty(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Following", 1).Return([]string{}, nil)

	router.GET("/user/following/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Following(c)
	})

	req := httptest.NewRequest("GET", "/user/following/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestFollowers_ListShape(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Followers", 1).Return([]string{"Carol"}, nil)

	router.GET("/user/followers/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Followers(c)
	})

	req := httptest.NewRequest("GET", "/user/followers/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response, 1)
	assert.Equal(t, "Carol", response[0]["name"])
}

func TestFollow_Success(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Follow", 1, "bob").Return(nil)

	router.POST("/user/following/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Follow(c)
	})

	body := `{"username":"bob"}`
	req := httptest.NewRequest("POST", "/user/following/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFollow_UnknownUser(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Follow", 1, "ghost").
		Return(fmt.Errorf("%w: user ghost", apperr.ErrNotFound))

	router.POST("/user/following/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Follow(c)
	})

	body := `{"username":"ghost"}`
	req := httptest.NewRequest("POST", "/user/following/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollow_Self(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Follow", 1, "alice").
		Return(fmt.Errorf("%w: cannot follow yourself", apperr.ErrInvalidInput))

	router.POST("/user/following/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Follow(c)
	})

	body := `{"username":"alice"}`
	req := httptest.NewRequest("POST", "/user/following/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot follow yourself")
}

func TestUnfollow_Success(t *testing.T) {
	mockService := new(MockUserService)
	router, controller := setupTestRouter(mockService)

	mockService.On("Unfollow", 1, "bob").Return(nil)

	router.DELETE("/user/following/:username/", func(c *gin.Context) {
		addAuthenticatedUser(c, 1)
		controller.Unfollow(c)
	})

	req := httptest.NewRequest("DELETE", "/user/following/bob/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
