// ABOUTME: Activity database operations
// ABOUTME: Logs call, email and LinkedIn activities with ULID identifiers
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/models"
	"github.com/oklog/ulid/v2"
)

func LogActivity(db *sql.DB, activity *models.Activity) error {
	if !activity.Type.Valid() {
		return fmt.Errorf("unknown activity type %q", activity.Type)
	}
	if activity.ProjectID == "" {
		return fmt.Errorf("activity needs a project")
	}

	activity.ID = ulid.Make().String()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	var contactID any
	if activity.ContactID != "" {
		contactID = activity.ContactID
	}

	_, err := db.Exec(`
		INSERT INTO activities (
			id, project_id, contact_id, type, created_at, activity_date, notes,
			next_action, next_action_date, call_status, status,
			ln_request_sent, connected, linkedin_account_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID, activity.ProjectID, contactID, string(activity.Type),
		activity.CreatedAt.Format(timeLayout), formatDay(activity.ChannelDate), activity.Notes,
		activity.NextAction, formatTime(activity.NextActionDate), activity.CallStatus, activity.Status,
		activity.LnRequestSent, activity.Connected, activity.LinkedInAccountName)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

func formatDay(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dates.DayLayout)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
