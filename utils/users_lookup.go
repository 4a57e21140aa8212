package utils

import (
	"database/sql"

	"github.com/lib/pq"
)

// Placeholder identity used whenever a patient id has no matching row in the
// users store. Missing users are expected (the stores share no referential
// integrity) and never an error.
const (
	PlaceholderPatientName  = "Unknown Patient"
	PlaceholderPatientEmail = "unknown@email.com"
)

// PatientContact is the slice of a user record the doctors-store read paths
// need.
type PatientContact struct {
	Name  string
	Email string
}

// ResolvePatients looks up the given user ids in the users store in one
// batched query and returns a complete map: every requested id is present,
// with the placeholder identity substituted for ids that have no user row.
func ResolvePatients(usersDB *sql.DB, ids []int64) (map[int64]PatientContact, error) {
	resolved := make(map[int64]PatientContact, len(ids))
	for _, id := range ids {
		resolved[id] = PatientContact{
			Name:  PlaceholderPatientName,
			Email: PlaceholderPatientEmail,
		}
	}
	if len(ids) == 0 {
		return resolved, nil
	}

	rows, err := usersDB.Query(`
		SELECT id, username, email FROM users WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var username, email string
		if err := rows.Scan(&id, &username, &email); err != nil {
			return nil, err
		}
		resolved[id] = PatientContact{Name: username, Email: email}
	}

	return resolved, rows.Err()
}
