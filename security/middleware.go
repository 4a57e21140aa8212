package security

import (
	"database/sql"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Database interface for dependency injection
type Database interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// JWT utilities
func SignAccessToken(userID int64) (string, error) {
	secret := os.Getenv("JWT_ACCESS_SECRET")
	if secret == "" {
		return "", errors.New("JWT_ACCESS_SECRET not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
		"iat":  time.Now().Unix(),
		"type": "access",
	})
	return token.SignedString([]byte(secret))
}

func SignRefreshToken(userID int64) (string, error) {
	secret := os.Getenv("JWT_REFRESH_SECRET")
	if secret == "" {
		return "", errors.New("JWT_REFRESH_SECRET not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"exp":  time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
		"type": "refresh",
	})
	return token.SignedString([]byte(secret))
}

// VerifyRefreshToken validates a refresh token and returns the user id it
// was issued for.
func VerifyRefreshToken(tokenStr string) (int64, error) {
	secret := os.Getenv("JWT_REFRESH_SECRET")
	if secret == "" {
		return 0, errors.New("JWT_REFRESH_SECRET not set")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return 0, errors.New("invalid token type")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("invalid subject claim")
	}
	return strconv.ParseInt(sub, 10, 64)
}

// AuthMiddleware creates a Gin middleware for JWT authentication. The user
// must still exist in the users store and must not be locked.
func AuthMiddleware(db Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			SendError(c, http.StatusUnauthorized, CodeMissingToken, "Authentication required",
				"Please provide a valid authorization token in the request header", nil)
			c.Abort()
			return
		}

		// Remove "Bearer " prefix if present
		if strings.HasPrefix(tokenStr, "Bearer ") {
			tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
		}

		secret := os.Getenv("JWT_ACCESS_SECRET")
		if secret == "" {
			SendError(c, http.StatusInternalServerError, CodeAuthVerificationError, "JWT configuration error",
				"Server configuration error. Please try again later", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			SendError(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid or expired token",
				"The provided token is invalid, expired, or malformed. Please login again to get a new token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			SendError(c, http.StatusUnauthorized, CodeInvalidTokenFormat, "Invalid token format",
				"The token format is invalid. Please login again to get a new token", nil)
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			SendError(c, http.StatusUnauthorized, CodeInvalidUserInfo, "Invalid user information",
				"The token does not contain valid user information. Please login again", nil)
			c.Abort()
			return
		}
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			SendError(c, http.StatusUnauthorized, CodeInvalidUserInfo, "Invalid user information",
				"The token does not contain valid user information. Please login again", nil)
			c.Abort()
			return
		}

		var exists bool
		err = db.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM users
				WHERE id = $1 AND (is_locked = FALSE OR lock_until < NOW())
			)
		`, userID).Scan(&exists)
		if err != nil {
			SendError(c, http.StatusInternalServerError, CodeAuthVerificationError, "Authentication verification failed",
				"Unable to verify user status. Please try again later", nil)
			c.Abort()
			return
		}
		if !exists {
			SendError(c, http.StatusUnauthorized, CodeUserNotFoundOrInactive, "User account not found or locked",
				"Your account is not found or has been locked. Please contact support", nil)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get("user_id")
	v, _ := id.(int64)
	return v
}

// RequireRole creates a Gin middleware for role-based access control
func RequireRole(db Database, expectedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)

		if userID == 0 {
			SendError(c, http.StatusUnauthorized, CodeUserNotAuthenticated, "User not authenticated",
				"User authentication is required to access this resource", nil)
			c.Abort()
			return
		}

		var role string
		err := db.QueryRow(`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
		if err != nil {
			SendError(c, http.StatusInternalServerError, CodePermissionCheckError, "Failed to check user permissions",
				"Unable to verify user permissions. Please try again later", nil)
			c.Abort()
			return
		}

		for _, expectedRole := range expectedRoles {
			if role == expectedRole {
				c.Set("role", role)
				c.Next()
				return
			}
		}

		var roleList string
		if len(expectedRoles) == 1 {
			roleList = expectedRoles[0]
		} else if len(expectedRoles) == 2 {
			roleList = expectedRoles[0] + " or " + expectedRoles[1]
		} else {
			roleList = strings.Join(expectedRoles[:len(expectedRoles)-1], ", ") + ", or " + expectedRoles[len(expectedRoles)-1]
		}

		SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions",
			"Access denied. This resource requires "+roleList+" role. Your current role: "+role,
			gin.H{
				"required_roles": expectedRoles,
				"user_role":      role,
			})
		c.Abort()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowOrigin := "*"
		if origin != "" {
			allowOrigin = origin
		}

		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin, Cache-Control, X-File-Name")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware tags every request with an X-Request-ID, generating one
// when the client did not supply it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
