package config

import (
	"database/sql"

	"go.uber.org/zap"

	"heartcare-backend/logger"
)

// Ids are plain integers in both stores. References across the store
// boundary (consultations.patient_id, doctor_reviews.patient_id) carry no
// referential integrity; readers must tolerate missing users permanently.

var usersSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'patient',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		login_attempts INTEGER NOT NULL DEFAULT 0,
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		lock_until TIMESTAMPTZ,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		token TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var doctorsSchema = []string{
	`CREATE TABLE IF NOT EXISTS doctors (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		name TEXT NOT NULL,
		specialization TEXT NOT NULL,
		years_experience INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		consultation_fee NUMERIC(10,2) NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0.0,
		total_reviews INTEGER NOT NULL DEFAULT 0,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		bio TEXT NOT NULL DEFAULT '',
		qualifications TEXT NOT NULL DEFAULT '',
		languages TEXT NOT NULL DEFAULT '',
		consultation_hours TEXT NOT NULL DEFAULT '',
		emergency_contact BOOLEAN NOT NULL DEFAULT FALSE,
		video_consultation BOOLEAN NOT NULL DEFAULT FALSE,
		chat_consultation BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_reviews (
		id BIGSERIAL PRIMARY KEY,
		doctor_id BIGINT NOT NULL REFERENCES doctors(id),
		patient_id BIGINT NOT NULL,
		rating INTEGER NOT NULL,
		review_text TEXT NOT NULL DEFAULT '',
		consultation_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS consultations (
		id BIGSERIAL PRIMARY KEY,
		doctor_id BIGINT NOT NULL REFERENCES doctors(id),
		patient_id BIGINT NOT NULL,
		consultation_type TEXT NOT NULL,
		consultation_date DATE NOT NULL,
		consultation_time TIME NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 15,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		video_call_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		consultation_id BIGINT NOT NULL REFERENCES consultations(id),
		sender_id BIGINT NOT NULL,
		sender_type TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func applySchema(db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InitUsersSchema creates the users-store tables.
func InitUsersSchema(db *sql.DB) error {
	return applySchema(db, usersSchema)
}

// InitDoctorsSchema creates the doctors-store tables.
func InitDoctorsSchema(db *sql.DB) error {
	return applySchema(db, doctorsSchema)
}

type demoDoctor struct {
	name, specialization                        string
	yearsExperience                             int
	location, city, state, country              string
	phone, email                                string
	fee, rating                                 float64
	totalReviews                                int
	bio, qualifications, languages, hours       string
	emergencyContact, videoConsult, chatConsult bool
}

var demoDoctors = []demoDoctor{
	{"Dr. Rajesh Kumar", "Cardiologist", 15, "Apollo Heart Institute", "Mumbai", "Maharashtra", "India",
		"+91 98765 43210", "dr.rajesh@apollo.com", 1500, 4.8, 127,
		"Senior Cardiologist with 15+ years of experience in interventional cardiology.",
		"MBBS, MD (Cardiology), DM (Interventional Cardiology)", "English, Hindi, Marathi",
		"Mon-Fri: 9 AM - 6 PM\nSat: 9 AM - 2 PM", true, true, true},
	{"Dr. Priya Sharma", "Cardiovascular Surgeon", 12, "Fortis Heart Hospital", "Delhi", "Delhi", "India",
		"+91 98765 43211", "dr.priya@fortis.com", 2000, 4.9, 89,
		"Expert in minimally invasive cardiac surgeries and heart transplants.",
		"MBBS, MS (General Surgery), MCh (Cardiovascular Surgery)", "English, Hindi, Punjabi",
		"Mon-Sat: 10 AM - 7 PM", true, true, false},
	{"Dr. Amit Patel", "Interventional Cardiologist", 10, "Medanta Heart Institute", "Gurgaon", "Haryana", "India",
		"+91 98765 43212", "dr.amit@medanta.com", 1800, 4.7, 156,
		"Specialist in angioplasty, stenting, and structural heart interventions.",
		"MBBS, MD (Cardiology), FSCAI", "English, Hindi, Gujarati",
		"Mon-Fri: 8 AM - 5 PM", true, true, true},
	{"Dr. Meera Reddy", "Heart Failure Specialist", 8, "Narayana Health", "Bangalore", "Karnataka", "India",
		"+91 98765 43213", "dr.meera@narayana.com", 1200, 4.6, 94,
		"Dedicated to managing heart failure and cardiac rehabilitation.",
		"MBBS, MD (Cardiology), Fellowship in Heart Failure", "English, Hindi, Telugu, Kannada",
		"Mon-Sat: 9 AM - 4 PM", false, true, true},
	{"Dr. Sanjay Verma", "Preventive Cardiologist", 20, "Max Super Speciality Hospital", "Pune", "Maharashtra", "India",
		"+91 98765 43214", "dr.sanjay@max.com", 1000, 4.9, 203,
		"Focus on preventive cardiology and lifestyle medicine.",
		"MBBS, MD (Cardiology), MPH", "English, Hindi, Marathi",
		"Mon-Fri: 10 AM - 6 PM", false, true, true},
}

// SeedDemoDoctors inserts demo profiles when the doctors table is empty.
func SeedDemoDoctors(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM doctors`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, d := range demoDoctors {
		_, err := db.Exec(`
			INSERT INTO doctors (
				name, specialization, years_experience, location, city, state, country,
				phone, email, consultation_fee, rating, total_reviews, bio, qualifications,
				languages, consultation_hours, emergency_contact, video_consultation, chat_consultation
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		`, d.name, d.specialization, d.yearsExperience, d.location, d.city, d.state, d.country,
			d.phone, d.email, d.fee, d.rating, d.totalReviews, d.bio, d.qualifications,
			d.languages, d.hours, d.emergencyContact, d.videoConsult, d.chatConsult)
		if err != nil {
			return err
		}
	}

	logger.GetLogger().Info("seeded demo doctors", zap.Int("count", len(demoDoctors)))
	return nil
}
