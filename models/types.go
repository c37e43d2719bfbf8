// ABOUTME: Data models for outreach tracking entities
// ABOUTME: Defines Contact, Activity, Project, KPI summary and snapshot types
package models

import (
	"strings"
	"time"
)

// Channel is one of the outreach channels an activity can be logged on.
type Channel string

const (
	ChannelCall     Channel = "call"
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
)

// Channels lists every supported channel in display order.
var Channels = []Channel{ChannelCall, ChannelEmail, ChannelLinkedIn}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelCall, ChannelEmail, ChannelLinkedIn:
		return true
	}
	return false
}

// Stage constants.
const (
	StageNew = "New"
	StageSQL = "SQL"
	StageWon = "WON"
)

// Call status constants.
const (
	CallStatusRing          = "Ring"
	CallStatusBusy          = "Busy"
	CallStatusSwitchOff     = "Switch Off"
	CallStatusInvalid       = "Invalid"
	CallStatusHangUp        = "Hang Up"
	CallStatusNotInterested = "Not Interested"
	CallStatusInterested    = "Interested"
	CallStatusDetailsShared = "Details Shared"
	CallStatusDemoBooked    = "Demo Booked"
	CallStatusDemoCompleted = "Demo Completed"
)

// Email and LinkedIn status constants.
const (
	StatusCIP              = "CIP"
	StatusConversations    = "Conversations in Progress"
	StatusMeetingProposed  = "Meeting Proposed"
	StatusMeetingScheduled = "Meeting Scheduled"
	StatusMeetingCompleted = "Meeting Completed"
	StatusBounce           = "Bounce"
	StatusOptOut           = "Opt-Out"
	StatusNoReply          = "No Reply"
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channels  []Channel `json:"channels,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	ID               string     `json:"id,omitempty"`
	Name             string     `json:"name" validate:"required_without=ID"`
	Company          string     `json:"company,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	LinkedInURLs     []string   `json:"linkedin_urls,omitempty"`
	Stage            string     `json:"stage"`
	ProjectContactID string     `json:"project_contact_id,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// Key returns the identity used for dedup and lookups. Unsaved suggestions
// have no id and fall back to their name.
func (c Contact) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

// Imported reports whether the contact was explicitly imported into the project.
func (c Contact) Imported() bool {
	return c.ProjectContactID != ""
}

type Activity struct {
	ID                  string     `json:"id"`
	ProjectID           string     `json:"project_id"`
	ContactID           string     `json:"contact_id,omitempty"`
	Type                Channel    `json:"type" validate:"required,oneof=call email linkedin"`
	CreatedAt           time.Time  `json:"created_at"`
	ChannelDate         *time.Time `json:"channel_date,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	NextAction          string     `json:"next_action,omitempty"`
	NextActionDate      *time.Time `json:"next_action_date,omitempty"`
	CallStatus          string     `json:"call_status,omitempty"`
	Status              string     `json:"status,omitempty"`
	LnRequestSent       bool       `json:"ln_request_sent,omitempty"`
	Connected           bool       `json:"connected,omitempty"`
	LinkedInAccountName string     `json:"linkedin_account_name,omitempty"`
}

// ActivityDate returns when the activity happened: the channel-specific date
// when present, else the creation timestamp. ok is false when neither is set.
// A channel date later than CreatedAt is returned as-is.
func (a Activity) ActivityDate() (time.Time, bool) {
	if a.ChannelDate != nil && !a.ChannelDate.IsZero() {
		return *a.ChannelDate, true
	}
	if !a.CreatedAt.IsZero() {
		return a.CreatedAt, true
	}
	return time.Time{}, false
}

// StatusValue returns the status-bearing field for the activity's channel,
// trimmed. Calls use CallStatus; email and LinkedIn use Status.
func (a Activity) StatusValue() string {
	switch a.Type {
	case ChannelCall:
		return strings.TrimSpace(a.CallStatus)
	case ChannelEmail, ChannelLinkedIn:
		return strings.TrimSpace(a.Status)
	}
	return ""
}

// ChannelSummary is the backend rollup for one channel.
type ChannelSummary struct {
	Activities int            `json:"activities"`
	Contacts   int            `json:"contacts"`
	ByStatus   map[string]int `json:"by_status,omitempty"`
}

// KPISummary holds precomputed per-channel aggregate counts for a project.
type KPISummary struct {
	ProjectID string                     `json:"project_id"`
	Channels  map[Channel]ChannelSummary `json:"channels"`
}

// Snapshot is an immutable full listing of a project's data at a point in time.
type Snapshot struct {
	Project    Project    `json:"project"`
	Contacts   []Contact  `json:"contacts"`
	Activities []Activity `json:"activities"`
	KPI        KPISummary `json:"kpi"`
	FetchedAt  time.Time  `json:"fetched_at"`
}
