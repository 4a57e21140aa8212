package controllers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"heartcare-backend/config"
	"heartcare-backend/logger"
	"heartcare-backend/models"
	"heartcare-backend/security"
)

const (
	maxLoginAttempts = 5
	lockDuration     = 30 * time.Minute
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{8,18}$`)
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	if err := config.UsersDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Users database connection failed"})
		return
	}
	if err := config.DoctorsDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Doctors database connection failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "heartcare-backend",
		"timestamp": time.Now().Unix(),
	})
}

func validatePasswordStrength(password string) []string {
	var errs []string
	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !upperRegex.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !lowerRegex.MatchString(password) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		errs = append(errs, "Password must contain at least one number")
	}
	return errs
}

func recordAuditEvent(userID *int64, action, details string) {
	_, err := config.UsersDB.Exec(`INSERT INTO audit_log (user_id, action, details) VALUES ($1,$2,$3)`,
		userID, action, details)
	if err != nil {
		logger.GetLogger().Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !emailRegex.MatchString(input.Email) {
		security.SendValidationError(c, "Invalid email format", "Please provide a valid email address")
		return
	}
	if !phoneRegex.MatchString(input.Phone) {
		security.SendValidationError(c, "Invalid phone format", "Please provide a valid phone number")
		return
	}
	if errs := validatePasswordStrength(input.Password); len(errs) > 0 {
		security.SendValidationError(c, "Password does not meet requirements", errs)
		return
	}

	role := input.Role
	if role == "" {
		role = models.RolePatient
	}
	if !models.ValidRole(role) {
		security.SendValidationError(c, "Invalid role",
			"Role must be one of: patient, doctor, researcher")
		return
	}

	// Check uniqueness up front so the caller gets a specific message
	var conflict string
	err := config.UsersDB.QueryRow(`
		SELECT CASE
			WHEN username = $1 THEN 'username'
			WHEN email = $2 THEN 'email'
			ELSE 'phone'
		END
		FROM users WHERE username = $1 OR email = $2 OR phone = $3
		LIMIT 1
	`, input.Username, input.Email, input.Phone).Scan(&conflict)
	if err == nil {
		switch conflict {
		case "username":
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case "email":
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": "Phone number already registered"})
		}
		return
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var userID int64
	err = config.UsersDB.QueryRow(`
		INSERT INTO users (username, email, phone, password_hash, role)
		VALUES ($1,$2,$3,$4,$5) RETURNING id
	`, input.Username, input.Email, input.Phone, string(passHash), role).Scan(&userID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create user")
		return
	}

	recordAuditEvent(&userID, "register", "user registered with role "+role)

	accessToken, err := security.SignAccessToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	refreshToken, err := security.SignRefreshToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.UsersDB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1,$2,$3)`,
		userID, refreshToken, expiresAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to store refresh token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": models.User{
			ID:        userID,
			Username:  input.Username,
			Email:     input.Email,
			Phone:     input.Phone,
			Role:      role,
			CreatedAt: time.Now(),
		},
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var user models.User
	err := config.UsersDB.QueryRow(`
		SELECT id, username, email, phone, password_hash, role, is_verified,
		       login_attempts, is_locked, lock_until
		FROM users WHERE username = $1
	`, input.Username).Scan(&user.ID, &user.Username, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Role, &user.IsVerified,
		&user.LoginAttempts, &user.IsLocked, &user.LockUntil)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if user.IsLocked && user.LockUntil != nil {
		if time.Now().Before(*user.LockUntil) {
			remaining := int(time.Until(*user.LockUntil).Minutes()) + 1
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Account locked", "retry_after_minutes": remaining,
			})
			return
		}
		// Lock expired; clear it before verifying the password
		_, _ = config.UsersDB.Exec(`
			UPDATE users SET is_locked = FALSE, login_attempts = 0, lock_until = NULL WHERE id = $1
		`, user.ID)
		user.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		attempts := user.LoginAttempts + 1
		if attempts >= maxLoginAttempts {
			lockUntil := time.Now().Add(lockDuration)
			_, _ = config.UsersDB.Exec(`
				UPDATE users SET login_attempts = $1, is_locked = TRUE, lock_until = $2 WHERE id = $3
			`, attempts, lockUntil, user.ID)
			recordAuditEvent(&user.ID, "account_locked", "too many failed login attempts")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Too many failed attempts. Account locked for 30 minutes"})
			return
		}
		_, _ = config.UsersDB.Exec(`UPDATE users SET login_attempts = $1 WHERE id = $2`, attempts, user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              "Invalid username or password",
			"attempts_remaining": maxLoginAttempts - attempts,
		})
		return
	}

	_, err = config.UsersDB.Exec(`
		UPDATE users SET login_attempts = 0, is_locked = FALSE, lock_until = NULL, last_login = NOW()
		WHERE id = $1
	`, user.ID)
	if err != nil {
		c.Header("X-Warning", "Failed to update last login timestamp")
	}

	accessToken, err := security.SignAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	refreshToken, err := security.SignRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.UsersDB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1,$2,$3)`,
		user.ID, refreshToken, expiresAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to store refresh token")
		return
	}

	recordAuditEvent(&user.ID, "login", "")

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"is_verified":  user.IsVerified,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    900, // 15 minutes for access token
	})
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	userID, err := security.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var tokenRowID int64
	err = config.UsersDB.QueryRow(`
		SELECT id FROM refresh_tokens
		WHERE user_id = $1 AND token = $2 AND expires_at > NOW() AND revoked_at IS NULL
	`, userID, input.RefreshToken).Scan(&tokenRowID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	// Revoke old token
	_, err = config.UsersDB.Exec(`UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1`, tokenRowID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to revoke old token")
		return
	}

	newAccessToken, err := security.SignAccessToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	newRefreshToken, err := security.SignRefreshToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	_, err = config.UsersDB.Exec(`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1,$2,$3)`,
		userID, newRefreshToken, expiresAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to store refresh token")
		return
	}

	var user models.User
	err = config.UsersDB.QueryRow(`
		SELECT id, username, email, phone, role, is_verified FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role, &user.IsVerified)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  newAccessToken,
		"refreshToken": newRefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    900,
	})
}

type LogoutInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func Logout(c *gin.Context) {
	var input LogoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := config.UsersDB.Exec(`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL`,
		input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check logout status"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func GetProfile(c *gin.Context) {
	userID := security.UserID(c)

	var user models.User
	err := config.UsersDB.QueryRow(`
		SELECT id, username, email, phone, role, is_verified, last_login, created_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role,
		&user.IsVerified, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func ChangePassword(c *gin.Context) {
	userID := security.UserID(c)
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if errs := validatePasswordStrength(input.NewPassword); len(errs) > 0 {
		security.SendValidationError(c, "New password does not meet requirements", errs)
		return
	}

	var currentHash string
	err := config.UsersDB.QueryRow(`SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&currentHash)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(input.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash new password"})
		return
	}

	_, err = config.UsersDB.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, string(newHash), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	recordAuditEvent(&userID, "password_change", "")

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
