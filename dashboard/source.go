// ABOUTME: Collaborator contracts the dashboard fetches from and writes back to
// ABOUTME: Defines the Source interface, optional capabilities and FetchError
package dashboard

import (
	"context"
	"fmt"

	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
)

// RawPage is one page of raw contact records with the source's totals.
type RawPage struct {
	Data       []normalize.Record
	Total      int
	TotalPages int
}

// Source supplies full activity listings, paged contact listings and the
// precomputed KPI rollup for a project. Search is matched by the source.
type Source interface {
	FetchActivities(ctx context.Context, projectID string) ([]normalize.Record, error)
	FetchContacts(ctx context.Context, projectID string, page, pageSize int, search string) (RawPage, error)
	FetchKPISummary(ctx context.Context, projectID string) (models.KPISummary, error)
}

// ProjectFetcher is implemented by sources that can describe a project.
type ProjectFetcher interface {
	FetchProject(ctx context.Context, projectID string) (models.Project, error)
}

// ActivityContactFetcher lists contacts referenced by a project's activities
// that were never imported into it.
type ActivityContactFetcher interface {
	FetchActivityContacts(ctx context.Context, projectID string) ([]normalize.Record, error)
}

// ActivityWriter persists one logged activity and returns it as stored.
type ActivityWriter interface {
	LogActivity(ctx context.Context, a models.Activity) (models.Activity, error)
}

// StageWriter updates a contact's stage label.
type StageWriter interface {
	UpdateContactStage(ctx context.Context, contactID, stage string) error
}

// ContactDeleter removes a contact.
type ContactDeleter interface {
	DeleteContact(ctx context.Context, contactID string) error
}

// FetchError wraps a failed source call. The dashboard keeps serving its
// last good state when one is returned.
type FetchError struct {
	Op        string
	ProjectID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not load %s for project %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
