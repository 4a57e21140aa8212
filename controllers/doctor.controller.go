package controllers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"heartcare-backend/config"
	"heartcare-backend/models"
	"heartcare-backend/security"
)

type RegisterDoctorInput struct {
	UserID            int64   `json:"user_id" binding:"required"`
	Name              string  `json:"name" binding:"required,min=2,max=100"`
	Specialization    string  `json:"specialization" binding:"required"`
	YearsExperience   int     `json:"years_experience" binding:"gte=0"`
	Location          string  `json:"location"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	Country           string  `json:"country"`
	Phone             string  `json:"phone" binding:"required"`
	Email             string  `json:"email" binding:"required"`
	ConsultationFee   float64 `json:"consultation_fee" binding:"gte=0"`
	Bio               string  `json:"bio"`
	Qualifications    string  `json:"qualifications"`
	Languages         string  `json:"languages"`
	ConsultationHours string  `json:"consultation_hours"`
	EmergencyContact  bool    `json:"emergency_contact"`
	VideoConsultation bool    `json:"video_consultation"`
	ChatConsultation  bool    `json:"chat_consultation"`
}

func RegisterDoctor(c *gin.Context) {
	var input RegisterDoctorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !emailRegex.MatchString(input.Email) {
		security.SendValidationError(c, "Invalid email format", "Please provide a valid email address")
		return
	}

	var existingID int64
	err := config.DoctorsDB.QueryRow(`SELECT id FROM doctors WHERE user_id = $1`, input.UserID).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Doctor profile already exists for this user", "doctor_id": existingID})
		return
	}
	if err != sql.ErrNoRows {
		security.SendDatabaseError(c, "Failed to check doctor profile")
		return
	}

	var doctorID int64
	err = config.DoctorsDB.QueryRow(`
		INSERT INTO doctors (user_id, name, specialization, years_experience, location, city, state,
			country, phone, email, consultation_fee, bio, qualifications, languages,
			consultation_hours, emergency_contact, video_consultation, chat_consultation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id
	`, input.UserID, input.Name, input.Specialization, input.YearsExperience, input.Location,
		input.City, input.State, input.Country, input.Phone, input.Email, input.ConsultationFee,
		input.Bio, input.Qualifications, input.Languages, input.ConsultationHours,
		input.EmergencyContact, input.VideoConsultation, input.ChatConsultation).Scan(&doctorID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to register doctor")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      doctorID,
		"message": "Doctor registered successfully",
	})
}

const doctorColumns = `
	d.id, d.user_id, d.name, d.specialization, d.years_experience, d.location, d.city,
	d.state, d.country, d.phone, d.email, d.consultation_fee, d.rating, d.total_reviews,
	d.is_verified, d.is_available, d.bio, d.qualifications, d.languages,
	d.consultation_hours, d.emergency_contact, d.video_consultation, d.chat_consultation,
	d.created_at,
	COALESCE(AVG(r.rating), 0) AS avg_rating,
	COUNT(r.id) AS review_count`

type doctorScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoctorWithStats(row doctorScanner, d *models.DoctorWithStats) error {
	return row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.YearsExperience,
		&d.Location, &d.City, &d.State, &d.Country, &d.Phone, &d.Email, &d.ConsultationFee,
		&d.Rating, &d.TotalReviews, &d.IsVerified, &d.IsAvailable, &d.Bio, &d.Qualifications,
		&d.Languages, &d.ConsultationHours, &d.EmergencyContact, &d.VideoConsultation,
		&d.ChatConsultation, &d.CreatedAt, &d.AvgRating, &d.ReviewCount)
}

// FindDoctors lists available doctors matching the query filters, best
// rated first.
func FindDoctors(c *gin.Context) {
	query := `
		SELECT` + doctorColumns + `
		FROM doctors d
		LEFT JOIN doctor_reviews r ON r.doctor_id = d.id
		WHERE d.is_available = TRUE`
	args := []interface{}{}
	argIndex := 1

	if specialization := c.Query("specialization"); specialization != "" {
		query += " AND LOWER(d.specialization) = LOWER($" + strconv.Itoa(argIndex) + ")"
		args = append(args, specialization)
		argIndex++
	}
	if city := c.Query("city"); city != "" {
		query += " AND LOWER(d.city) = LOWER($" + strconv.Itoa(argIndex) + ")"
		args = append(args, city)
		argIndex++
	}
	if maxFee := c.Query("max_fee"); maxFee != "" {
		fee, err := strconv.ParseFloat(maxFee, 64)
		if err != nil {
			security.SendValidationError(c, "Invalid max_fee", "max_fee must be a number")
			return
		}
		query += " AND d.consultation_fee <= $" + strconv.Itoa(argIndex)
		args = append(args, fee)
		argIndex++
	}
	if minExperience := c.Query("min_experience"); minExperience != "" {
		years, err := strconv.Atoi(minExperience)
		if err != nil {
			security.SendValidationError(c, "Invalid min_experience", "min_experience must be a number")
			return
		}
		query += " AND d.years_experience >= $" + strconv.Itoa(argIndex)
		args = append(args, years)
		argIndex++
	}
	if c.Query("video_only") == "true" {
		query += " AND d.video_consultation = TRUE"
	}
	if c.Query("chat_only") == "true" {
		query += " AND d.chat_consultation = TRUE"
	}
	if c.Query("emergency_only") == "true" {
		query += " AND d.emergency_contact = TRUE"
	}

	query += `
		GROUP BY d.id`

	if minRating := c.Query("min_rating"); minRating != "" {
		rating, err := strconv.ParseFloat(minRating, 64)
		if err != nil {
			security.SendValidationError(c, "Invalid min_rating", "min_rating must be a number")
			return
		}
		query += " HAVING COALESCE(AVG(r.rating), 0) >= $" + strconv.Itoa(argIndex)
		args = append(args, rating)
		argIndex++
	}

	query += `
		ORDER BY avg_rating DESC, d.years_experience DESC`

	rows, err := config.DoctorsDB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctors")
		return
	}
	defer rows.Close()

	doctors := []models.DoctorWithStats{}
	for rows.Next() {
		var d models.DoctorWithStats
		if err := scanDoctorWithStats(rows, &d); err != nil {
			security.SendDatabaseError(c, "Failed to scan doctor")
			return
		}
		doctors = append(doctors, d)
	}

	c.JSON(http.StatusOK, gin.H{"doctors": doctors, "count": len(doctors)})
}

const doctorByFieldQuery = `
	SELECT` + doctorColumns + `
	FROM doctors d
	LEFT JOIN doctor_reviews r ON r.doctor_id = d.id
	WHERE `

// GetDoctor returns one doctor profile with its reviews, newest first.
func GetDoctor(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid doctor ID", "Doctor ID must be a number")
		return
	}

	var d models.DoctorWithStats
	err = scanDoctorWithStats(config.DoctorsDB.QueryRow(doctorByFieldQuery+`d.id = $1 GROUP BY d.id`, doctorID), &d)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "Doctor")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctor")
		return
	}

	rows, err := config.DoctorsDB.Query(`
		SELECT id, doctor_id, patient_id, rating, review_text, consultation_date::text, created_at
		FROM doctor_reviews WHERE doctor_id = $1
		ORDER BY created_at DESC
	`, doctorID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch reviews")
		return
	}
	defer rows.Close()

	reviews := []models.DoctorReview{}
	for rows.Next() {
		var r models.DoctorReview
		if err := rows.Scan(&r.ID, &r.DoctorID, &r.PatientID, &r.Rating, &r.ReviewText,
			&r.ConsultationDate, &r.CreatedAt); err != nil {
			security.SendDatabaseError(c, "Failed to scan review")
			return
		}
		reviews = append(reviews, r)
	}

	c.JSON(http.StatusOK, gin.H{"doctor": d, "reviews": reviews})
}

// GetDoctorByUser resolves a doctor profile from the portal user id.
func GetDoctorByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid user ID", "User ID must be a number")
		return
	}

	var d models.DoctorWithStats
	err = scanDoctorWithStats(config.DoctorsDB.QueryRow(doctorByFieldQuery+`d.user_id = $1 GROUP BY d.id`, userID), &d)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "Doctor")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctor")
		return
	}

	c.JSON(http.StatusOK, d)
}

type AddReviewInput struct {
	PatientID        int64   `json:"patient_id" binding:"required"`
	Rating           int     `json:"rating" binding:"required,min=1,max=5"`
	ReviewText       string  `json:"review_text"`
	ConsultationDate *string `json:"consultation_date"`
}

// AddReview records a patient review and folds it into the doctor's
// stored rating in the same transaction.
func AddReview(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid doctor ID", "Doctor ID must be a number")
		return
	}

	var input AddReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	tx, err := config.DoctorsDB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var currentRating float64
	var totalReviews int
	err = tx.QueryRow(`SELECT rating, total_reviews FROM doctors WHERE id = $1 FOR UPDATE`,
		doctorID).Scan(&currentRating, &totalReviews)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "Doctor")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch doctor")
		return
	}

	var reviewID int64
	err = tx.QueryRow(`
		INSERT INTO doctor_reviews (doctor_id, patient_id, rating, review_text, consultation_date)
		VALUES ($1,$2,$3,$4,$5) RETURNING id
	`, doctorID, input.PatientID, input.Rating, input.ReviewText, input.ConsultationDate).Scan(&reviewID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to add review")
		return
	}

	newTotal := totalReviews + 1
	newRating := (currentRating*float64(totalReviews) + float64(input.Rating)) / float64(newTotal)
	_, err = tx.Exec(`UPDATE doctors SET rating = $1, total_reviews = $2 WHERE id = $3`,
		newRating, newTotal, doctorID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update doctor rating")
		return
	}

	if err := tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            reviewID,
		"rating":        newRating,
		"total_reviews": newTotal,
		"message":       "Review added successfully",
	})
}
