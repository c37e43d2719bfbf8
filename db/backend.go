// ABOUTME: SQLite-backed source for the dashboard
// ABOUTME: Serves raw activity and contact records, KPI rollups and write-backs
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
)

// ErrNotFound is returned by Backend lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Backend adapts the local database to the dashboard's Source contract and
// all of its write capabilities. Records come back loosely typed the way an
// export would: dates as strings and LinkedIn flags as "Yes"/"No".
type Backend struct {
	db *sql.DB
}

func NewBackend(db *sql.DB) *Backend {
	return &Backend{db: db}
}

var (
	_ dashboard.Source                 = (*Backend)(nil)
	_ dashboard.ProjectFetcher         = (*Backend)(nil)
	_ dashboard.ActivityContactFetcher = (*Backend)(nil)
	_ dashboard.ActivityWriter         = (*Backend)(nil)
	_ dashboard.StageWriter            = (*Backend)(nil)
	_ dashboard.ContactDeleter         = (*Backend)(nil)
)

func (b *Backend) FetchProject(ctx context.Context, projectID string) (models.Project, error) {
	if err := ctx.Err(); err != nil {
		return models.Project{}, err
	}
	p, err := GetProject(b.db, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if p == nil {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return *p, nil
}

const activityColumns = `
	id, project_id, COALESCE(contact_id, ''), type, created_at, activity_date, notes,
	next_action, next_action_date, call_status, status,
	ln_request_sent, connected, linkedin_account_name`

func (b *Backend) FetchActivities(ctx context.Context, projectID string) ([]normalize.Record, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT `+activityColumns+`
		FROM activities WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var records []normalize.Record
	for rows.Next() {
		r, err := scanActivityRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanActivityRecord(s scanner) (normalize.Record, error) {
	var (
		id, projectID, contactID, typ, created, day   string
		notes, nextAction, nextDate, callStatus, stat string
		lnSent, connected                             bool
		account                                       string
	)
	err := s.Scan(&id, &projectID, &contactID, &typ, &created, &day, &notes,
		&nextAction, &nextDate, &callStatus, &stat, &lnSent, &connected, &account)
	if err != nil {
		return nil, err
	}

	r := normalize.Record{
		"id":        id,
		"projectId": projectID,
		"type":      typ,
		"createdAt": created,
	}
	set(r, "contactId", contactID)
	set(r, channelDateKey(models.Channel(typ)), day)
	set(r, "notes", notes)
	set(r, "nextAction", nextAction)
	set(r, "nextActionDate", nextDate)
	set(r, "callStatus", callStatus)
	set(r, "status", stat)
	set(r, "linkedInAccountName", account)
	if models.Channel(typ) == models.ChannelLinkedIn {
		r["lnRequestSent"] = yesNo(lnSent)
		r["connected"] = yesNo(connected)
	}
	return r, nil
}

func channelDateKey(ch models.Channel) string {
	switch ch {
	case models.ChannelEmail:
		return "emailDate"
	case models.ChannelLinkedIn:
		return "linkedinDate"
	}
	return "callDate"
}

func set(r normalize.Record, key, value string) {
	if value != "" {
		r[key] = value
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// FetchContacts pages a project's imported contacts in import order. search
// matches name, email or company case-insensitively.
func (b *Backend) FetchContacts(ctx context.Context, projectID string, page, pageSize int, search string) (dashboard.RawPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return dashboard.RawPage{}, fmt.Errorf("invalid page size %d", pageSize)
	}

	where := `pc.project_id = ?`
	args := []any{projectID}
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		where += ` AND (c.name LIKE ? ESCAPE '\' OR c.email LIKE ? ESCAPE '\' OR c.company LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	err := b.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM project_contacts pc
		JOIN contacts c ON c.id = pc.contact_id
		WHERE `+where, args...).Scan(&total)
	if err != nil {
		return dashboard.RawPage{}, fmt.Errorf("failed to count contacts: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.company, c.email, c.phone, c.linkedin_urls, c.stage, c.created_at, pc.id
		FROM project_contacts pc
		JOIN contacts c ON c.id = pc.contact_id
		WHERE `+where+`
		ORDER BY pc.created_at, pc.id
		LIMIT ? OFFSET ?
	`, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return dashboard.RawPage{}, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	records, err := scanContactRecords(rows)
	if err != nil {
		return dashboard.RawPage{}, err
	}
	return dashboard.RawPage{
		Data:       records,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// FetchActivityContacts lists contacts that have activities in the project
// without being imported into it.
func (b *Backend) FetchActivityContacts(ctx context.Context, projectID string) ([]normalize.Record, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.name, c.company, c.email, c.phone, c.linkedin_urls, c.stage, c.created_at, ''
		FROM activities a
		JOIN contacts c ON c.id = a.contact_id
		WHERE a.project_id = ?
		AND NOT EXISTS (
			SELECT 1 FROM project_contacts pc
			WHERE pc.project_id = a.project_id AND pc.contact_id = c.id
		)
		ORDER BY c.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity contacts: %w", err)
	}
	defer rows.Close()
	return scanContactRecords(rows)
}

func scanContactRecords(rows *sql.Rows) ([]normalize.Record, error) {
	var records []normalize.Record
	for rows.Next() {
		var id, name, company, email, phone, urls, stage, created, membership string
		if err := rows.Scan(&id, &name, &company, &email, &phone, &urls, &stage, &created, &membership); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		r := normalize.Record{"id": id, "name": name, "stage": stage, "createdAt": created}
		set(r, "company", company)
		set(r, "email", email)
		set(r, "phone", phone)
		set(r, "projectContactId", membership)
		if links := splitLines(urls); len(links) > 0 {
			r["linkedinUrls"] = links
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FetchKPISummary rolls activities up per channel: activity count, distinct
// contacts and counts by status.
func (b *Backend) FetchKPISummary(ctx context.Context, projectID string) (models.KPISummary, error) {
	summary := models.KPISummary{ProjectID: projectID, Channels: map[models.Channel]models.ChannelSummary{}}

	rows, err := b.db.QueryContext(ctx, `
		SELECT type, COUNT(*), COUNT(DISTINCT contact_id)
		FROM activities WHERE project_id = ?
		GROUP BY type
	`, projectID)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize activities: %w", err)
	}
	for rows.Next() {
		var (
			typ string
			cs  models.ChannelSummary
		)
		if err := rows.Scan(&typ, &cs.Activities, &cs.Contacts); err != nil {
			rows.Close()
			return summary, fmt.Errorf("failed to scan summary: %w", err)
		}
		cs.ByStatus = map[string]int{}
		summary.Channels[models.Channel(typ)] = cs
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return summary, err
	}

	rows, err = b.db.QueryContext(ctx, `
		SELECT type, TRIM(CASE WHEN type = 'call' THEN call_status ELSE status END) AS s, COUNT(*)
		FROM activities WHERE project_id = ?
		GROUP BY type, s
		HAVING s != ''
	`, projectID)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ, status string
			n           int
		)
		if err := rows.Scan(&typ, &status, &n); err != nil {
			return summary, fmt.Errorf("failed to scan status summary: %w", err)
		}
		cs := summary.Channels[models.Channel(typ)]
		if cs.ByStatus == nil {
			cs.ByStatus = map[string]int{}
		}
		cs.ByStatus[status] = n
		summary.Channels[models.Channel(typ)] = cs
	}
	return summary, rows.Err()
}

func (b *Backend) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return models.Activity{}, err
	}
	if err := LogActivity(b.db, &a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

func (b *Backend) UpdateContactStage(ctx context.Context, contactID, stage string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return UpdateContactStage(b.db, contactID, stage)
}

func (b *Backend) DeleteContact(ctx context.Context, contactID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return DeleteContact(b.db, contactID)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
