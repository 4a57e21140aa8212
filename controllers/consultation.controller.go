package controllers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"heartcare-backend/config"
	"heartcare-backend/logger"
	"heartcare-backend/models"
	"heartcare-backend/security"
	"heartcare-backend/utils"
)

type BookConsultationInput struct {
	DoctorID         int64  `json:"doctor_id" binding:"required"`
	PatientID        int64  `json:"patient_id" binding:"required"`
	ConsultationType string `json:"consultation_type" binding:"required"`
	ConsultationDate string `json:"consultation_date" binding:"required"`
	ConsultationTime string `json:"consultation_time" binding:"required"`
	DurationMinutes  int    `json:"duration_minutes"`
	Notes            string `json:"notes"`
}

// BookConsultation creates a pending consultation. Video and emergency
// bookings get their call link at creation time so the patient can join
// without a second round trip.
func BookConsultation(c *gin.Context) {
	var input BookConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !models.ValidConsultationType(input.ConsultationType) {
		security.SendValidationError(c, "Invalid consultation type",
			"Type must be one of: Video Consultation, Chat Consultation, In-Person, Emergency Consultation")
		return
	}

	var doctorExists bool
	err := config.DoctorsDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM doctors WHERE id = $1 AND is_available = TRUE)`,
		input.DoctorID).Scan(&doctorExists)
	if err != nil {
		security.SendDatabaseError(c, "Failed to verify doctor")
		return
	}
	if !doctorExists {
		security.SendNotFoundError(c, "Doctor")
		return
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 15
	}

	var videoLink *string
	if input.ConsultationType == models.TypeVideo || input.ConsultationType == models.TypeEmergency {
		link, err := utils.NewVideoCallLink()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate video call link"})
			return
		}
		videoLink = &link
	}

	var consultationID int64
	err = config.DoctorsDB.QueryRow(`
		INSERT INTO consultations (doctor_id, patient_id, consultation_type, consultation_date,
			consultation_time, duration_minutes, notes, status, video_call_link)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, input.DoctorID, input.PatientID, input.ConsultationType, input.ConsultationDate,
		input.ConsultationTime, duration, input.Notes,
		models.StatusPending, videoLink).Scan(&consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to book consultation")
		return
	}

	resp := gin.H{
		"id":      consultationID,
		"status":  models.StatusPending,
		"message": "Consultation booked successfully",
	}
	if videoLink != nil {
		resp["video_call_link"] = *videoLink
	}
	c.JSON(http.StatusCreated, resp)
}

// ListDoctorConsultations returns a doctor's bookings enriched with
// patient contact details from the users store. Patients missing there
// come back with placeholder contact fields rather than failing the list.
func ListDoctorConsultations(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid doctor ID", "Doctor ID must be a number")
		return
	}

	query := `
		SELECT id, doctor_id, patient_id, consultation_type, consultation_date::text,
		       consultation_time::text, duration_minutes, status, notes, video_call_link, created_at
		FROM consultations WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			security.SendValidationError(c, "Invalid status filter",
				"Status must be one of: pending, confirmed, completed, cancelled")
			return
		}
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY consultation_date DESC, consultation_time DESC"

	rows, err := config.DoctorsDB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch consultations")
		return
	}
	defer rows.Close()

	consultations := []models.ConsultationWithPatient{}
	patientIDs := []int64{}
	for rows.Next() {
		var cons models.ConsultationWithPatient
		err := rows.Scan(&cons.ID, &cons.DoctorID, &cons.PatientID, &cons.ConsultationType,
			&cons.ConsultationDate, &cons.ConsultationTime, &cons.DurationMinutes,
			&cons.Status, &cons.Notes, &cons.VideoCallLink, &cons.CreatedAt)
		if err != nil {
			security.SendDatabaseError(c, "Failed to scan consultation")
			return
		}
		consultations = append(consultations, cons)
		patientIDs = append(patientIDs, cons.PatientID)
	}

	contacts, err := utils.ResolvePatients(config.UsersDB, patientIDs)
	if err != nil {
		// Users store being down should not hide the doctor's schedule
		logger.GetLogger().Warn("patient lookup failed, using placeholders", zap.Error(err))
		contacts = map[int64]utils.PatientContact{}
	}
	for i := range consultations {
		contact, ok := contacts[consultations[i].PatientID]
		if !ok {
			contact = utils.PatientContact{
				Name:  utils.PlaceholderPatientName,
				Email: utils.PlaceholderPatientEmail,
			}
		}
		consultations[i].PatientName = contact.Name
		consultations[i].PatientEmail = contact.Email
	}

	c.JSON(http.StatusOK, gin.H{"consultations": consultations, "count": len(consultations)})
}

// ListPatientConsultations returns a patient's bookings with the doctor's
// name and specialization joined in.
func ListPatientConsultations(c *gin.Context) {
	patientID, err := strconv.ParseInt(c.Param("patient_id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid patient ID", "Patient ID must be a number")
		return
	}

	rows, err := config.DoctorsDB.Query(`
		SELECT c.id, c.doctor_id, c.patient_id, c.consultation_type, c.consultation_date::text,
		       c.consultation_time::text, c.duration_minutes, c.status, c.notes,
		       c.video_call_link, c.created_at, d.name, d.specialization
		FROM consultations c
		JOIN doctors d ON d.id = c.doctor_id
		WHERE c.patient_id = $1
		ORDER BY c.consultation_date DESC, c.consultation_time DESC
	`, patientID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch consultations")
		return
	}
	defer rows.Close()

	consultations := []models.ConsultationWithDoctor{}
	for rows.Next() {
		var cons models.ConsultationWithDoctor
		err := rows.Scan(&cons.ID, &cons.DoctorID, &cons.PatientID, &cons.ConsultationType,
			&cons.ConsultationDate, &cons.ConsultationTime, &cons.DurationMinutes,
			&cons.Status, &cons.Notes, &cons.VideoCallLink, &cons.CreatedAt,
			&cons.DoctorName, &cons.Specialization)
		if err != nil {
			security.SendDatabaseError(c, "Failed to scan consultation")
			return
		}
		consultations = append(consultations, cons)
	}

	c.JSON(http.StatusOK, gin.H{"consultations": consultations, "count": len(consultations)})
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateConsultationStatus moves a consultation through its lifecycle.
// Completed and cancelled are terminal unless LEGACY_STATUS_WRITES
// permits free overwrites for older clients.
func UpdateConsultationStatus(c *gin.Context) {
	consultationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid consultation ID", "Consultation ID must be a number")
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !models.ValidStatus(input.Status) {
		security.SendValidationError(c, "Invalid status",
			"Status must be one of: pending, confirmed, completed, cancelled")
		return
	}

	var currentStatus string
	err = config.DoctorsDB.QueryRow(`SELECT status FROM consultations WHERE id = $1`,
		consultationID).Scan(&currentStatus)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "Consultation")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch consultation")
		return
	}

	if !config.LegacyStatusWrites() && !models.CanTransition(currentStatus, input.Status) {
		security.SendInvalidTransition(c, currentStatus, input.Status)
		return
	}

	result, err := config.DoctorsDB.Exec(`UPDATE consultations SET status = $1 WHERE id = $2`,
		input.Status, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update consultation status")
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		security.SendDatabaseError(c, "Failed to check update status")
		return
	}
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "Consultation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      consultationID,
		"status":  input.Status,
		"message": "Consultation status updated",
	})
}

// EnsureVideoLink returns the consultation's video call link, minting
// one the first time it is asked for. Repeat calls return the same link.
func EnsureVideoLink(c *gin.Context) {
	consultationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		security.SendValidationError(c, "Invalid consultation ID", "Consultation ID must be a number")
		return
	}

	var existing sql.NullString
	err = config.DoctorsDB.QueryRow(`SELECT video_call_link FROM consultations WHERE id = $1`,
		consultationID).Scan(&existing)
	if err == sql.ErrNoRows {
		security.SendNotFoundError(c, "Consultation")
		return
	}
	if err != nil {
		security.SendDatabaseError(c, "Failed to fetch consultation")
		return
	}

	if existing.Valid && existing.String != "" {
		c.JSON(http.StatusOK, gin.H{"id": consultationID, "video_call_link": existing.String})
		return
	}

	link, err := utils.NewVideoCallLink()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate video call link"})
		return
	}
	_, err = config.DoctorsDB.Exec(`UPDATE consultations SET video_call_link = $1 WHERE id = $2`,
		link, consultationID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to store video call link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": consultationID, "video_call_link": link})
}
