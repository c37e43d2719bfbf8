// ABOUTME: Contact database operations
// ABOUTME: Handles contact creation, project membership, stage updates and deletion
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadgen/models"
)

const timeLayout = time.RFC3339Nano

func CreateContact(db *sql.DB, contact *models.Contact) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate contact id: %w", err)
	}
	contact.ID = id.String()
	now := time.Now()
	contact.CreatedAt = &now
	if contact.Stage == "" {
		contact.Stage = models.StageNew
	}
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))

	_, err = db.Exec(`
		INSERT INTO contacts (id, name, company, email, phone, linkedin_urls, stage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID, contact.Name, contact.Company, contact.Email, contact.Phone,
		strings.Join(contact.LinkedInURLs, "\n"), contact.Stage, now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func GetContact(db *sql.DB, id string) (*models.Contact, error) {
	var (
		contact models.Contact
		urls    string
		created string
	)
	err := db.QueryRow(`
		SELECT id, name, company, email, phone, linkedin_urls, stage, created_at
		FROM contacts WHERE id = ?
	`, id).Scan(&contact.ID, &contact.Name, &contact.Company, &contact.Email,
		&contact.Phone, &urls, &contact.Stage, &created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	contact.LinkedInURLs = splitLines(urls)
	if t, err := time.Parse(timeLayout, created); err == nil {
		contact.CreatedAt = &t
	}
	return &contact, nil
}

// FindContactByEmail returns the contact with the given email, or nil.
func FindContactByEmail(db *sql.DB, email string) (*models.Contact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var id string
	err := db.QueryRow(`SELECT id FROM contacts WHERE email = ? ORDER BY id LIMIT 1`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return GetContact(db, id)
}

// AddContactToProject imports a contact into a project and returns the
// membership id. Adding an existing member returns its original id.
func AddContactToProject(db *sql.DB, projectID, contactID string) (string, error) {
	_, err := db.Exec(`
		INSERT INTO project_contacts (id, project_id, contact_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, contact_id) DO NOTHING
	`, uuid.New().String(), projectID, contactID, time.Now().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("failed to add contact to project: %w", err)
	}

	var id string
	err = db.QueryRow(`
		SELECT id FROM project_contacts WHERE project_id = ? AND contact_id = ?
	`, projectID, contactID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read project membership: %w", err)
	}
	return id, nil
}

func UpdateContactStage(db *sql.DB, contactID, stage string) error {
	res, err := db.Exec(`UPDATE contacts SET stage = ? WHERE id = ?`, stage, contactID)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %s not found", contactID)
	}
	return nil
}

// DeleteContact removes a contact with its memberships and activities.
func DeleteContact(db *sql.DB, contactID string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM activities WHERE contact_id = ?`, contactID); err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM project_contacts WHERE contact_id = ?`, contactID); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM contacts WHERE id = ?`, contactID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %s not found", contactID)
	}

	return tx.Commit()
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
