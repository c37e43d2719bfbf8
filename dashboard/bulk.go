// ABOUTME: Bulk activity logging, stage write-backs and optimistic contact deletion
// ABOUTME: Each bulk unit succeeds or fails on its own with a live progress count
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harperreed/leadgen/metrics"
	"github.com/harperreed/leadgen/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrReadOnlySource is returned when the source lacks a write capability.
var ErrReadOnlySource = errors.New("source does not accept writes")

// BulkProgress is reported after every unit of a bulk operation.
type BulkProgress struct {
	Done      int
	Total     int
	Succeeded int
	Failed    int
}

// BulkResult summarizes a finished bulk operation.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []error
	// Logged holds the stored activities in completion order.
	Logged []models.Activity
}

func (r BulkResult) String() string {
	return fmt.Sprintf("%d succeeded, %d failed", r.Succeeded, r.Failed)
}

// LogActivities logs each activity independently, bounded by the configured
// concurrency. A failed unit never stops the others. progress, when not nil,
// is called after each unit, one call at a time. Activities with a status
// trigger a background stage write-back for their contact when the source
// supports it.
func (d *Dashboard) LogActivities(ctx context.Context, activities []models.Activity, progress func(BulkProgress)) (BulkResult, error) {
	writer, ok := d.source.(ActivityWriter)
	if !ok {
		return BulkResult{}, ErrReadOnlySource
	}

	var (
		mu     sync.Mutex
		result BulkResult
	)
	record := func(logged models.Activity, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			metrics.BulkActivitiesTotal.WithLabelValues("failed").Inc()
		} else {
			result.Succeeded++
			result.Logged = append(result.Logged, logged)
			metrics.BulkActivitiesTotal.WithLabelValues("succeeded").Inc()
		}
		if progress != nil {
			progress(BulkProgress{
				Done:      result.Succeeded + result.Failed,
				Total:     len(activities),
				Succeeded: result.Succeeded,
				Failed:    result.Failed,
			})
		}
	}

	var g errgroup.Group
	g.SetLimit(d.bulkLimit)
	for i, a := range activities {
		g.Go(func() error {
			logged, err := writer.LogActivity(ctx, a)
			if err != nil {
				d.logger.Debug("bulk activity failed",
					zap.Int("index", i),
					zap.String("contact", a.ContactID),
					zap.Error(err))
				record(models.Activity{}, fmt.Errorf("activity %d for contact %s: %w", i, a.ContactID, err))
				return nil
			}
			record(logged, nil)
			d.writeBackStage(ctx, logged)
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Info("bulk activity log finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	return result, nil
}

// writeBackStage copies a logged status onto the contact's stage without
// waiting for the result. Close waits for outstanding write-backs.
func (d *Dashboard) writeBackStage(ctx context.Context, a models.Activity) {
	sw, ok := d.source.(StageWriter)
	if !ok || a.ContactID == "" {
		return
	}
	stage := a.StatusValue()
	if stage == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	d.background.Add(1)
	metrics.WriteBacksInFlight.Inc()
	go func() {
		defer d.background.Done()
		defer metrics.WriteBacksInFlight.Dec()
		if err := sw.UpdateContactStage(ctx, a.ContactID, stage); err != nil {
			d.logger.Warn("stage write-back failed",
				zap.String("contact", a.ContactID),
				zap.String("stage", stage),
				zap.Error(err))
		}
	}()
}

// DeleteContact hides a contact from every listing immediately, then deletes
// it at the source. A failed delete restores the contact.
func (d *Dashboard) DeleteContact(ctx context.Context, contactID string) error {
	deleter, ok := d.source.(ContactDeleter)
	if !ok {
		return ErrReadOnlySource
	}

	d.tombstones.Add(contactID)
	if err := deleter.DeleteContact(ctx, contactID); err != nil {
		d.tombstones.Remove(contactID)
		return fmt.Errorf("failed to delete contact %s: %w", contactID, err)
	}
	d.logger.Debug("contact deleted", zap.String("contact", contactID))
	return nil
}
