// ABOUTME: Evaluates listing criteria against contacts using the activity index
// ABOUTME: Composes predicates by AND, isolates per-contact failures, sorts by name
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/models"
	"go.uber.org/zap"
)

// Predicate tests one contact. An error excludes that contact only.
type Predicate struct {
	Name string
	Test func(c models.Contact) (bool, error)
}

// Engine evaluates criteria.
type Engine struct {
	kpi    *kpi.Evaluator
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(evaluator *kpi.Evaluator, logger *zap.Logger) *Engine {
	if evaluator == nil {
		evaluator = kpi.NewEvaluator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{kpi: evaluator, logger: logger}
}

// Evaluator returns the KPI evaluator the engine uses.
func (en *Engine) Evaluator() *kpi.Evaluator {
	return en.kpi
}

// Predicates builds the predicate list for criteria. Search has no
// predicate because the source already applied it.
func (en *Engine) Predicates(c Criteria, ix *index.Index, projectID string) []Predicate {
	var preds []Predicate

	if status := strings.TrimSpace(c.Status); status != "" {
		preds = append(preds, Predicate{"status", func(ct models.Contact) (bool, error) {
			return ix.DisplayStatus(ct) == status, nil
		}})
	}

	if !c.NextAction.IsZero() {
		w := c.NextAction
		preds = append(preds, Predicate{"next-action", func(ct models.Contact) (bool, error) {
			a, ok := ix.NextAction[ct.ID]
			if !ok || ct.ID == "" {
				return false, nil
			}
			return w.Contains(*a.NextActionDate, true, ix.Now), nil
		}})
	}

	if !c.LastInteraction.IsZero() {
		w := c.LastInteraction
		preds = append(preds, Predicate{"last-interaction", func(ct models.Contact) (bool, error) {
			a, ok := ix.LastActivity[ct.ID]
			if !ok || ct.ID == "" {
				return false, nil
			}
			at, ok := a.ActivityDate()
			return w.Contains(at, ok, ix.Now), nil
		}})
	}

	if !c.ImportDate.IsZero() {
		w := c.ImportDate
		preds = append(preds, Predicate{"import-date", func(ct models.Contact) (bool, error) {
			if ct.CreatedAt == nil {
				return false, nil
			}
			return w.Contains(*ct.CreatedAt, true, ix.Now), nil
		}})
	}

	if c.NoActivity {
		preds = append(preds, Predicate{"no-activity", func(ct models.Contact) (bool, error) {
			return !ix.HasActivity(ct), nil
		}})
	}

	if c.KPI != nil {
		req := *c.KPI
		preds = append(preds, Predicate{"kpi", func(ct models.Contact) (bool, error) {
			return en.kpi.HasMatchingActivity(req, ct, ix, projectID)
		}})
	}

	return preds
}

// Apply returns the contacts passing every predicate, sorted as requested,
// along with one error per excluded contact whose evaluation failed. Invalid
// criteria match nothing.
func (en *Engine) Apply(contacts []models.Contact, c Criteria, ix *index.Index, projectID string) ([]models.Contact, []error) {
	if err := c.Validate(en.kpi); err != nil {
		return nil, []error{err}
	}

	preds := en.Predicates(c, ix, projectID)
	out := make([]models.Contact, 0, len(contacts))
	var errs []error
	for _, ct := range contacts {
		ok, err := matches(ct, preds)
		if err != nil {
			en.logger.Debug("contact excluded by failing predicate",
				zap.String("contact", ct.Key()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, ct)
		}
	}

	SortContacts(out, c.Sort)
	return out, errs
}

func matches(ct models.Contact, preds []Predicate) (ok bool, err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%s filter panicked for contact %q: %v", current, ct.Key(), r)
		}
	}()

	for _, p := range preds {
		current = p.Name
		pass, err := p.Test(ct)
		if err != nil {
			return false, fmt.Errorf("%s filter failed for contact %q: %w", p.Name, ct.Key(), err)
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// SortContacts stable-sorts contacts by name in place. SortNone keeps input order.
func SortContacts(contacts []models.Contact, s Sort) {
	switch s {
	case SortNameAsc:
		sort.SliceStable(contacts, func(i, j int) bool {
			return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(contacts, func(i, j int) bool {
			return strings.ToLower(contacts[i].Name) > strings.ToLower(contacts[j].Name)
		})
	}
}
