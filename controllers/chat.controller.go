package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"heartcare-backend/config"
	"heartcare-backend/models"
	"heartcare-backend/security"
)

const (
	defaultChatPageSize = 50
	maxChatPageSize     = 200
	maxChatMessageLen   = 2000
)

type SendMessageInput struct {
	SenderID   int64  `json:"sender_id" binding:"required"`
	SenderType string `json:"sender_type" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

// SendChatMessage appends a message to a consultation's chat thread.
func SendChatMessage(c *gin.Context) {
	consultationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid consultation ID", "Consultation ID must be a number")
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !models.ValidSenderType(input.SenderType) {
		security.SendValidationError(c, "Invalid sender type", "Sender must be 'doctor' or 'patient'")
		return
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		security.SendValidationError(c, "Empty message", "Message cannot be blank")
		return
	}
	if len(message) > maxChatMessageLen {
		security.SendValidationError(c, "Message too long",
			"Message must be at most "+strconv.Itoa(maxChatMessageLen)+" characters")
		return
	}

	var exists bool
	err = config.DoctorsDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`,
		consultationID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to verify consultation")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "Consultation")
		return
	}

	var msg models.ChatMessage
	err = config.DoctorsDB.QueryRow(`
		INSERT INTO chat_messages (consultation_id, sender_id, sender_type, message)
		VALUES ($1,$2,$3,$4)
		RETURNING id, consultation_id, sender_id, sender_type, message, created_at
	`, consultationID, input.SenderID, input.SenderType, message).Scan(
		&msg.ID, &msg.ConsultationID, &msg.SenderID, &msg.SenderType, &msg.Message, &msg.CreatedAt)
	if err != nil {
		security.SendDatabaseError(c, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetChatMessages returns a consultation's messages oldest first, with
// limit/offset paging.
func GetChatMessages(c *gin.Context) {
	consultationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid consultation ID", "Consultation ID must be a number")
		return
	}

	limit := defaultChatPageSize
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			security.SendValidationError(c, "Invalid limit", "limit must be a positive number")
			return
		}
		if limit > maxChatPageSize {
			limit = maxChatPageSize
		}
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			security.SendValidationError(c, "Invalid offset", "offset must be a non-negative number")
			return
		}
	}

	var exists bool
	err = config.DoctorsDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`,
		consultationID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to verify consultation")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "Consultation")
		return
	}

	rows, err := config.DoctorsDB.Query(`
		SELECT id, consultation_id, sender_id, sender_type, message, created_at
		FROM chat_messages
		WHERE consultation_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, consultationID, limit, offset)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch messages")
		return
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ConsultationID, &msg.SenderID, &msg.SenderType, &msg.Message, &msg.CreatedAt); err != nil {
			security.SendDatabaseError(c, "Failed to scan message")
			return
		}
		messages = append(messages, msg)
	}

	c.JSON(http.StatusOK, gin.H{
		"consultation_id": consultationID,
		"messages":        messages,
		"count":           len(messages),
		"limit":           limit,
		"offset":          offset,
	})
}
