package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartcare-backend/models"
)

func chatRouter() *gin.Engine {
	r := gin.New()
	r.POST("/consultations/:id/messages", SendChatMessage)
	r.GET("/consultations/:id/messages", GetChatMessages)
	return r
}

func TestSendChatMessageStoresTrimmedText(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO chat_messages").
		WithArgs(int64(3), int64(42), models.SenderPatient, "How are my results?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "consultation_id", "sender_id", "sender_type", "message", "created_at"}).
			AddRow(int64(1), int64(3), int64(42), models.SenderPatient, "How are my results?", sqlmockTime()))

	w := performJSON(chatRouter(), http.MethodPost, "/consultations/3/messages", gin.H{
		"sender_id":   42,
		"sender_type": models.SenderPatient,
		"message":     "  How are my results?  ",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "How are my results?", msg.Message)
	assert.Equal(t, models.SenderPatient, msg.SenderType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendChatMessageRejectsBlankMessage(t *testing.T) {
	newMockDoctorsDB(t)

	w := performJSON(chatRouter(), http.MethodPost, "/consultations/3/messages", gin.H{
		"sender_id":   42,
		"sender_type": models.SenderPatient,
		"message":     "   ",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendChatMessageRejectsUnknownSender(t *testing.T) {
	newMockDoctorsDB(t)

	w := performJSON(chatRouter(), http.MethodPost, "/consultations/3/messages", gin.H{
		"sender_id":   42,
		"sender_type": "admin",
		"message":     "hello",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendChatMessageRejectsOversizedMessage(t *testing.T) {
	newMockDoctorsDB(t)

	w := performJSON(chatRouter(), http.MethodPost, "/consultations/3/messages", gin.H{
		"sender_id":   42,
		"sender_type": models.SenderDoctor,
		"message":     strings.Repeat("x", maxChatMessageLen+1),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendChatMessageUnknownConsultation(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	w := performJSON(chatRouter(), http.MethodPost, "/consultations/99/messages", gin.H{
		"sender_id":   42,
		"sender_type": models.SenderDoctor,
		"message":     "hello",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChatMessagesOldestFirst(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT id, consultation_id, sender_id, sender_type, message, created_at").
		WithArgs(int64(3), 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "consultation_id", "sender_id", "sender_type", "message", "created_at"}).
			AddRow(int64(1), int64(3), int64(42), models.SenderPatient, "first", sqlmockTime()).
			AddRow(int64(2), int64(3), int64(7), models.SenderDoctor, "second", sqlmockTime()))

	req := httptest.NewRequest(http.MethodGet, "/consultations/3/messages", nil)
	w := httptest.NewRecorder()
	chatRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
		Count    int                  `json:"count"`
		Limit    int                  `json:"limit"`
		Offset   int                  `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "first", resp.Messages[0].Message)
	assert.Equal(t, "second", resp.Messages[1].Message)
	assert.Equal(t, 50, resp.Limit)
	assert.Equal(t, 0, resp.Offset)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChatMessagesCapsLimit(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM consultations WHERE id = $1)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT id, consultation_id, sender_id, sender_type, message, created_at").
		WithArgs(int64(3), maxChatPageSize, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "consultation_id", "sender_id", "sender_type", "message", "created_at"}))

	req := httptest.NewRequest(http.MethodGet, "/consultations/3/messages?limit=9999&offset=10", nil)
	w := httptest.NewRecorder()
	chatRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChatMessagesRejectsBadPaging(t *testing.T) {
	newMockDoctorsDB(t)

	for _, path := range []string{
		"/consultations/3/messages?limit=0",
		"/consultations/3/messages?limit=abc",
		"/consultations/3/messages?offset=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		chatRouter().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
