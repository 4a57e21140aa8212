package models

import (
	"time"
)

// Consultation lifecycle states.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Supported consultation types. Stored as text; validated at booking time.
const (
	TypeVideo     = "Video Consultation"
	TypeChat      = "Chat Consultation"
	TypeInPerson  = "In-Person"
	TypeEmergency = "Emergency Consultation"
)

// ValidConsultationType reports whether t is one of the supported types.
func ValidConsultationType(t string) bool {
	switch t {
	case TypeVideo, TypeChat, TypeInPerson, TypeEmergency:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// statusTransitions is the allowed lifecycle. completed and cancelled are
// terminal; a terminal consultation cannot be reopened.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether a consultation may move from one status to
// another. Re-asserting the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Consultation struct {
	ID               int64     `json:"id" db:"id"`
	DoctorID         int64     `json:"doctor_id" db:"doctor_id"`
	PatientID        int64     `json:"patient_id" db:"patient_id"`
	ConsultationType string    `json:"consultation_type" db:"consultation_type"`
	ConsultationDate string    `json:"consultation_date" db:"consultation_date"`
	ConsultationTime string    `json:"consultation_time" db:"consultation_time"`
	DurationMinutes  int       `json:"duration_minutes" db:"duration_minutes"`
	Status           string    `json:"status" db:"status"`
	Notes            string    `json:"notes" db:"notes"`
	VideoCallLink    *string   `json:"video_call_link" db:"video_call_link"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ConsultationWithPatient is a doctor's view of a booking, enriched with the
// patient identity resolved from the users store. When the user record is
// missing the placeholder identity is used instead.
type ConsultationWithPatient struct {
	Consultation
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
}

// ConsultationWithDoctor is a patient's view of a booking, joined with the
// doctor profile from the same store.
type ConsultationWithDoctor struct {
	Consultation
	DoctorName     string `json:"doctor_name"`
	Specialization string `json:"specialization"`
}

type ChatMessage struct {
	ID             int64     `json:"id" db:"id"`
	ConsultationID int64     `json:"consultation_id" db:"consultation_id"`
	SenderID       int64     `json:"sender_id" db:"sender_id"`
	SenderType     string    `json:"sender_type" db:"sender_type"`
	Message        string    `json:"message" db:"message"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Chat sender types.
const (
	SenderDoctor  = "doctor"
	SenderPatient = "patient"
)

// ValidSenderType reports whether t is a known chat participant kind.
func ValidSenderType(t string) bool {
	return t == SenderDoctor || t == SenderPatient
}
