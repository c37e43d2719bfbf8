// ABOUTME: Converts raw contact and activity records into strict model types
// ABOUTME: Validates at the ingestion boundary so downstream code never probes optional fields
package normalize

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/harperreed/leadgen/models"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordError describes one record rejected during batch normalization.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Normalizer converts raw records using a fixed local time zone for
// date-only values.
type Normalizer struct {
	loc      *time.Location
	validate *validator.Validate
}

// New creates a normalizer. A nil location means time.Local.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		loc:      loc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Location returns the zone used for date-only values.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Contact converts one raw contact record.
func (n *Normalizer) Contact(r Record) (models.Contact, error) {
	c := models.Contact{
		ID:               ID(r.first("id", "_id", "contactId", "contact_id")),
		Name:             String(r.first("name", "fullName", "full_name")),
		Company:          String(r.first("company", "companyName", "company_name")),
		Email:            strings.ToLower(String(r.first("email"))),
		Phone:            String(r.first("phone", "phoneNumber", "phone_number")),
		LinkedInURLs:     Strings(r.first("linkedinUrls", "linkedInUrls", "linkedinUrl", "linkedInUrl", "linkedin", "linkedin_url")),
		Stage:            String(r.first("stage")),
		ProjectContactID: ID(r.first("projectContactId", "project_contact_id")),
	}
	if c.Stage == "" {
		c.Stage = models.StageNew
	}

	if t, ok := IDTime(c.ID); ok {
		c.CreatedAt = &t
	} else {
		c.CreatedAt = DatePtr(r.first("createdAt", "created_at"), n.loc)
	}

	if err := n.validate.Struct(c); err != nil {
		return models.Contact{}, validationError(c, err)
	}
	return c, nil
}

// Activity converts one raw activity record. The channel date is the first
// parseable of callDate, emailDate and linkedinDate, starting with the
// activity's own channel.
func (n *Normalizer) Activity(r Record) (models.Activity, error) {
	a := models.Activity{
		ID:                  ID(r.first("id", "_id")),
		ProjectID:           ID(r.first("projectId", "project_id")),
		ContactID:           ID(r.first("contactId", "contact_id")),
		Type:                models.Channel(strings.ToLower(String(r.first("type", "channel")))),
		Notes:               String(r.first("notes", "note")),
		NextAction:          String(r.first("nextAction", "next_action")),
		NextActionDate:      DatePtr(r.first("nextActionDate", "next_action_date"), n.loc),
		CallStatus:          String(r.first("callStatus", "call_status")),
		Status:              String(r.first("status")),
		LnRequestSent:       Bool(r.first("lnRequestSent", "ln_request_sent")),
		Connected:           Bool(r.first("connected")),
		LinkedInAccountName: String(r.first("linkedInAccountName", "linkedinAccountName", "linkedin_account_name")),
	}
	if created, ok := Date(r.first("createdAt", "created_at"), n.loc); ok {
		a.CreatedAt = created
	}

	for _, key := range channelDateKeys(a.Type) {
		if t, ok := Date(r[key], n.loc); ok {
			a.ChannelDate = &t
			break
		}
	}

	if err := n.validate.Struct(a); err != nil {
		return models.Activity{}, validationError(a, err)
	}
	return a, nil
}

func channelDateKeys(ch models.Channel) []string {
	switch ch {
	case models.ChannelEmail:
		return []string{"emailDate", "callDate", "linkedinDate"}
	case models.ChannelLinkedIn:
		return []string{"linkedinDate", "callDate", "emailDate"}
	default:
		return []string{"callDate", "emailDate", "linkedinDate"}
	}
}

// Contacts normalizes a batch, dropping invalid records.
func (n *Normalizer) Contacts(records []Record) ([]models.Contact, []error) {
	contacts := make([]models.Contact, 0, len(records))
	var errs []error
	for i, r := range records {
		c, err := n.Contact(r)
		if err != nil {
			errs = append(errs, &RecordError{Index: i, ID: ID(r.first("id", "_id")), Err: err})
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, errs
}

// Activities normalizes a batch, dropping invalid records.
func (n *Normalizer) Activities(records []Record) ([]models.Activity, []error) {
	activities := make([]models.Activity, 0, len(records))
	var errs []error
	for i, r := range records {
		a, err := n.Activity(r)
		if err != nil {
			errs = append(errs, &RecordError{Index: i, ID: ID(r.first("id", "_id")), Err: err})
			continue
		}
		activities = append(activities, a)
	}
	return activities, errs
}

// IDTime extracts the creation timestamp embedded in creation-ordered ids:
// Mongo ObjectIDs (seconds in the first 4 bytes), ULIDs and UUIDv7
// (milliseconds in the first 48 bits).
func IDTime(id string) (time.Time, bool) {
	id = strings.TrimSpace(id)
	switch len(id) {
	case 24:
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return time.Time{}, false
		}
		ts := oid.Timestamp()
		return ts, ts.Unix() > 0
	case 26:
		u, err := ulid.ParseStrict(id)
		if err != nil || u.Time() == 0 {
			return time.Time{}, false
		}
		return ulid.Time(u.Time()), true
	case 36:
		u, err := uuid.Parse(id)
		if err != nil || u.Version() != 7 {
			return time.Time{}, false
		}
		ms := int64(binary.BigEndian.Uint64(u[:8]) >> 16)
		return time.UnixMilli(ms), ms > 0
	}
	return time.Time{}, false
}

// DecodeRecords decodes a JSON array of records, or an object wrapping the
// array under "data". Numbers are kept as json.Number.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode envelope: %w", err)
		}
		if len(envelope.Data) == 0 {
			return nil, errors.New("object has no data array")
		}
		raw = envelope.Data
	}

	arr := json.NewDecoder(strings.NewReader(string(raw)))
	arr.UseNumber()
	var records []Record
	if err := arr.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode record array: %w", err)
	}
	return records, nil
}

func validationError(input any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%T.%s failed '%s' (got %q)", input, fe.StructField(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return errors.New(strings.Join(parts, "; "))
}
