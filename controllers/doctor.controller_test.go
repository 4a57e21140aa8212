package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartcare-backend/models"
)

func doctorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "specialization", "years_experience", "location", "city",
		"state", "country", "phone", "email", "consultation_fee", "rating", "total_reviews",
		"is_verified", "is_available", "bio", "qualifications", "languages",
		"consultation_hours", "emergency_contact", "video_consultation", "chat_consultation",
		"created_at", "avg_rating", "review_count",
	})
}

func addDoctorRow(rows *sqlmock.Rows, id int64, name string, avgRating float64, reviews int) *sqlmock.Rows {
	return rows.AddRow(id, nil, name, "Cardiologist", 10, "Heart Institute", "Mumbai",
		"Maharashtra", "India", "+91 90000 00000", "doc@example.com", 1500.0, avgRating, reviews,
		true, true, "bio", "MBBS, MD", "English", "Mon-Fri: 9 AM - 6 PM",
		false, true, true, sqlmockTime(), avgRating, reviews)
}

func TestFindDoctorsReturnsRankedList(t *testing.T) {
	mock := newMockDoctorsDB(t)

	rows := doctorRows()
	addDoctorRow(rows, 1, "Dr. Priya Sharma", 4.9, 89)
	addDoctorRow(rows, 2, "Dr. Rajesh Kumar", 4.8, 127)
	mock.ExpectQuery("SELECT(.|\n)+FROM doctors d").WillReturnRows(rows)

	router := gin.New()
	router.GET("/doctors", FindDoctors)

	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Doctors []models.DoctorWithStats `json:"doctors"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "Dr. Priya Sharma", resp.Doctors[0].Name)
	assert.Equal(t, 4.9, resp.Doctors[0].AvgRating)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDoctorsAppliesFilters(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery("SELECT(.|\n)+FROM doctors d").
		WithArgs("cardiologist", 2000.0, 4.5).
		WillReturnRows(doctorRows())

	router := gin.New()
	router.GET("/doctors", FindDoctors)

	req := httptest.NewRequest(http.MethodGet,
		"/doctors?specialization=cardiologist&max_fee=2000&min_rating=4.5&video_only=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDoctorsMinExperienceFiltersInQuery(t *testing.T) {
	mock := newMockDoctorsDB(t)

	rows := doctorRows()
	addDoctorRow(rows, 1, "Dr. Sanjay Verma", 4.9, 203)
	mock.ExpectQuery(`SELECT(.|\n)+FROM doctors d(.|\n)+years_experience >= \$1`).
		WithArgs(10).
		WillReturnRows(rows)

	router := gin.New()
	router.GET("/doctors", FindDoctors)

	req := httptest.NewRequest(http.MethodGet, "/doctors?min_experience=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Doctors []models.DoctorWithStats `json:"doctors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, d := range resp.Doctors {
		assert.GreaterOrEqual(t, d.YearsExperience, 10)
	}

	assert.NoError(t, mock.ExpectationsWereMet(),
		"min_experience must bind a years_experience predicate")
}

func TestFindDoctorsMinExperienceCombinesWithMaxFee(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(`SELECT(.|\n)+consultation_fee <= \$1(.|\n)+years_experience >= \$2`).
		WithArgs(2000.0, 10).
		WillReturnRows(doctorRows())

	router := gin.New()
	router.GET("/doctors", FindDoctors)

	req := httptest.NewRequest(http.MethodGet, "/doctors?max_fee=2000&min_experience=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDoctorsRejectsBadFilterValues(t *testing.T) {
	newMockDoctorsDB(t)

	router := gin.New()
	router.GET("/doctors", FindDoctors)

	for _, path := range []string{"/doctors?max_fee=expensive", "/doctors?min_rating=best", "/doctors?min_experience=veteran"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func registerDoctorInput() gin.H {
	return gin.H{
		"user_id":        int64(5),
		"name":           "Dr. Meera Reddy",
		"specialization": "Heart Failure Specialist",
		"phone":          "+91 98765 43213",
		"email":          "dr.meera@narayana.com",
	}
}

func TestRegisterDoctorConflictOnExistingProfile(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM doctors WHERE user_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	router := gin.New()
	router.POST("/doctors", RegisterDoctor)

	w := performJSON(router, http.MethodPost, "/doctors", registerDoctorInput())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDoctorLookupFailureIsNotTreatedAsAbsent(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM doctors WHERE user_id = $1`)).
		WithArgs(int64(5)).
		WillReturnError(errors.New("connection refused"))

	router := gin.New()
	router.POST("/doctors", RegisterDoctor)

	w := performJSON(router, http.MethodPost, "/doctors", registerDoctorInput())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(),
		"a failed lookup must not fall through to INSERT")
}

func TestGetDoctorNotFound(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectQuery("SELECT(.|\n)+FROM doctors d").
		WithArgs(int64(99)).
		WillReturnRows(doctorRows())

	router := gin.New()
	router.GET("/doctors/:id", GetDoctor)

	req := httptest.NewRequest(http.MethodGet, "/doctors/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddReviewUpdatesRatingIncrementally(t *testing.T) {
	mock := newMockDoctorsDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT rating, total_reviews FROM doctors WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"rating", "total_reviews"}).AddRow(4.0, 3))
	mock.ExpectQuery("INSERT INTO doctor_reviews").
		WithArgs(int64(1), int64(42), 5, "great doctor", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	// (4.0*3 + 5) / 4 = 4.25
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE doctors SET rating = $1, total_reviews = $2 WHERE id = $3`)).
		WithArgs(4.25, 4, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/doctors/:id/reviews", AddReview)

	w := performJSON(router, http.MethodPost, "/doctors/1/reviews", gin.H{
		"patient_id":  42,
		"rating":      5,
		"review_text": "great doctor",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4.25, resp["rating"])
	assert.Equal(t, float64(4), resp["total_reviews"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReviewRejectsOutOfRangeRating(t *testing.T) {
	newMockDoctorsDB(t)

	router := gin.New()
	router.POST("/doctors/:id/reviews", AddReview)

	for _, rating := range []int{0, 6} {
		w := performJSON(router, http.MethodPost, "/doctors/1/reviews", gin.H{
			"patient_id": 42,
			"rating":     rating,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", rating)
	}
}
