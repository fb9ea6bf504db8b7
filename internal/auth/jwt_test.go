package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(123, "alice", testSecret)

	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 123, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidateToken_ValidToken(t *testing.T) {
	token, err := generateToken(456, "bob", 15*time.Minute, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	require.NoError(t, err)
	assert.Equal(t, 456, claims.UserID)
	assert.Equal(t, "bob", claims.Username)
}

func TestValidateToken_InvalidSecret(t *testing.T) {
	token, err := GenerateToken(789, "carol", testSecret)
	require.NoError(t, err)

	// Try to validate with wrong secret
	claims, err := ValidateToken(token, "wrong-secret")

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	// Generate token with negative duration (already expired)
	token, err := generateToken(101, "dave", -1*time.Hour, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_MalformedToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Empty token",
			token: "",
		},
		{
			name:  "Random string",
			token: "not-a-valid-jwt-token",
		},
		{
			name:  "Incomplete JWT",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, testSecret)

			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_HMACOnly(t *testing.T) {
	claims := Claims{
		UserID:   999,
		Username: "eve",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(testSecret))

	validClaims, err := ValidateToken(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 999, validClaims.UserID)
}

func TestGetUserIDFromContext_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	expectedUserID := 123
	c.Set(UserIDKey, expectedUserID)

	userID, err := GetUserIDFromContext(c)

	require.NoError(t, err)
	assert.Equal(t, expectedUserID, userID)
}

func TestGetUserIDFromContext_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Equal(t, 0, userID)
	assert.Contains(t, err.Error(), "user ID not found in context")
}

func TestGetUserIDFromContext_InvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(UserIDKey, "not-an-int")

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Equal(t, 0, userID)
	assert.Contains(t, err.Error(), "invalid user ID type")
}

func TestGetUsernameFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(UsernameKey, "alice")

	username, err := GetUsernameFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestGetUsernameFromContext_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	username, err := GetUsernameFromContext(c)
	assert.Error(t, err)
	assert.Empty(t, username)
}

func TestTokenExpiration(t *testing.T) {
	// Generate token with very short expiration
	shortLivedToken, err := generateToken(888, "frank", 300*time.Millisecond, testSecret)
	require.NoError(t, err)

	// Should be valid immediately
	claims, err := ValidateToken(shortLivedToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 888, claims.UserID)

	// Wait for token to expire (give extra margin)
	time.Sleep(500 * time.Millisecond)

	claims, err = ValidateToken(shortLivedToken, testSecret)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// Benchmark token generation
func BenchmarkGenerateToken(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateToken(123, "alice", testSecret)
	}
}

// Benchmark token validation
func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken(123, "alice", testSecret)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateToken(token, testSecret)
	}
}
