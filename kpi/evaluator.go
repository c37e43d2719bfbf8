// ABOUTME: KPI membership tests and local per-metric tallies for contacts
// ABOUTME: Resolves legacy metric names and scopes activities by channel and project
package kpi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/models"
	"github.com/sahilm/fuzzy"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownMetric  = errors.New("unknown KPI metric")
)

// Request names one KPI tile: a channel and a metric on it.
type Request struct {
	Channel models.Channel `json:"channel"`
	Metric  string         `json:"metric"`
}

func (r Request) String() string {
	return string(r.Channel) + ":" + r.Metric
}

// ParseRequest parses "channel:metric", as used by saved links and the CLI.
func ParseRequest(s string) (Request, error) {
	channel, metricName, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || metricName == "" {
		return Request{}, fmt.Errorf("invalid KPI %q: expected channel:metric", s)
	}
	return Request{
		Channel: models.Channel(strings.ToLower(strings.TrimSpace(channel))),
		Metric:  strings.TrimSpace(metricName),
	}, nil
}

// Evaluator answers KPI membership questions. The zero value is not usable;
// construct with NewEvaluator.
type Evaluator struct {
	metrics map[models.Channel]map[string]metric
	order   map[models.Channel][]string
}

// NewEvaluator builds the metric registry for every channel.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[models.Channel]map[string]metric),
		order:   make(map[models.Channel][]string),
	}
	for _, ch := range models.Channels {
		byName := make(map[string]metric)
		for _, m := range channelMetrics(ch) {
			byName[strings.ToLower(m.name)] = m
			e.order[ch] = append(e.order[ch], m.name)
		}
		e.metrics[ch] = byName
	}
	return e
}

// Resolve validates a request and returns it with the channel's current
// metric name, following legacy aliases. Lookup ignores case.
func (e *Evaluator) Resolve(req Request) (Request, error) {
	byName, ok := e.metrics[req.Channel]
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownChannel, req.Channel)
	}
	name := req.Metric
	for legacy, modern := range legacyAliases[req.Channel] {
		if strings.EqualFold(legacy, name) {
			name = modern
			break
		}
	}
	m, ok := byName[strings.ToLower(name)]
	if !ok {
		if hint := e.suggest(req.Channel, name); hint != "" {
			return Request{}, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownMetric, req, hint)
		}
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownMetric, req)
	}
	return Request{Channel: req.Channel, Metric: m.name}, nil
}

// suggest returns the best fuzzy match for name among the channel's metric
// names, or "" when nothing matches.
func (e *Evaluator) suggest(ch models.Channel, name string) string {
	if name == "" {
		return ""
	}
	matches := fuzzy.Find(name, e.order[ch])
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// Metrics lists a channel's metric names in display order, without aliases.
func (e *Evaluator) Metrics(ch models.Channel) []string {
	return append([]string(nil), e.order[ch]...)
}

// Aliases lists a channel's legacy metric names, sorted.
func Aliases(ch models.Channel) []string {
	names := make([]string, 0, len(legacyAliases[ch]))
	for name := range legacyAliases[ch] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMatchingActivity reports whether a contact counts toward the requested
// KPI within a project. Only activities keyed to the contact's id, on the
// requested channel and in projectID are considered. Missing fields make a
// metric false; an unknown channel or metric is an error. A panic inside a
// metric is recovered and reported as an error.
func (e *Evaluator) HasMatchingActivity(req Request, c models.Contact, ix *index.Index, projectID string) (matched bool, err error) {
	resolved, err := e.Resolve(req)
	if err != nil {
		return false, err
	}
	m := e.metrics[resolved.Channel][strings.ToLower(resolved.Metric)]

	defer func() {
		if r := recover(); r != nil {
			matched, err = false, fmt.Errorf("metric %s panicked for contact %q: %v", resolved, c.Key(), r)
		}
	}()

	return m.fn(subject{
		contact: c,
		acts:    scope(ix, c, resolved.Channel, projectID),
		now:     ix.Now,
	}), nil
}

func scope(ix *index.Index, c models.Contact, ch models.Channel, projectID string) []models.Activity {
	if c.ID == "" {
		return nil
	}
	var out []models.Activity
	for _, a := range ix.ByContact[c.ID] {
		if a.Type == ch && a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

// Tally counts, per channel and metric, how many contacts match. It is the
// local counterpart of the backend KPI summary.
func (e *Evaluator) Tally(contacts []models.Contact, ix *index.Index, projectID string) map[models.Channel]map[string]int {
	counts := make(map[models.Channel]map[string]int, len(models.Channels))
	for _, ch := range models.Channels {
		perMetric := make(map[string]int, len(e.order[ch]))
		for _, name := range e.order[ch] {
			req := Request{Channel: ch, Metric: name}
			for _, c := range contacts {
				if ok, err := e.HasMatchingActivity(req, c, ix, projectID); err == nil && ok {
					perMetric[name]++
				}
			}
		}
		counts[ch] = perMetric
	}
	return counts
}
