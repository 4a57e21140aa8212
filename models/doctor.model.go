package models

import (
	"time"
)

type Doctor struct {
	ID                int64     `json:"id" db:"id"`
	UserID            *int64    `json:"user_id" db:"user_id"`
	Name              string    `json:"name" db:"name"`
	Specialization    string    `json:"specialization" db:"specialization"`
	YearsExperience   int       `json:"years_experience" db:"years_experience"`
	Location          string    `json:"location" db:"location"`
	City              string    `json:"city" db:"city"`
	State             string    `json:"state" db:"state"`
	Country           string    `json:"country" db:"country"`
	Phone             string    `json:"phone" db:"phone"`
	Email             string    `json:"email" db:"email"`
	ConsultationFee   float64   `json:"consultation_fee" db:"consultation_fee"`
	Rating            float64   `json:"rating" db:"rating"`
	TotalReviews      int       `json:"total_reviews" db:"total_reviews"`
	IsVerified        bool      `json:"is_verified" db:"is_verified"`
	IsAvailable       bool      `json:"is_available" db:"is_available"`
	Bio               string    `json:"bio" db:"bio"`
	Qualifications    string    `json:"qualifications" db:"qualifications"`
	Languages         string    `json:"languages" db:"languages"`
	ConsultationHours string    `json:"consultation_hours" db:"consultation_hours"`
	EmergencyContact  bool      `json:"emergency_contact" db:"emergency_contact"`
	VideoConsultation bool      `json:"video_consultation" db:"video_consultation"`
	ChatConsultation  bool      `json:"chat_consultation" db:"chat_consultation"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// DoctorWithStats is a Doctor augmented with aggregates computed on read
// from doctor_reviews. Doctors with no reviews keep zero aggregates.
type DoctorWithStats struct {
	Doctor
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type DoctorReview struct {
	ID               int64     `json:"id" db:"id"`
	DoctorID         int64     `json:"doctor_id" db:"doctor_id"`
	PatientID        int64     `json:"patient_id" db:"patient_id"`
	Rating           int       `json:"rating" db:"rating"`
	ReviewText       string    `json:"review_text" db:"review_text"`
	ConsultationDate *string   `json:"consultation_date" db:"consultation_date"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
