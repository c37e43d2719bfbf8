// ABOUTME: Named per-channel KPI metrics and the legacy names that map onto them
// ABOUTME: Each metric is a boolean test over a contact's channel-scoped activities or stage
package kpi

import (
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/models"
)

// subject is what a metric sees: one contact and its activities already
// narrowed to the requested channel and project.
type subject struct {
	contact models.Contact
	acts    []models.Activity
	now     time.Time
}

type metricFunc func(s subject) bool

type metric struct {
	name string
	fn   metricFunc
}

var unreachedCallStatuses = map[string]bool{
	models.CallStatusRing:      true,
	models.CallStatusBusy:      true,
	models.CallStatusSwitchOff: true,
	models.CallStatusInvalid:   true,
	models.CallStatusHangUp:    true,
}

var undeliveredEmailStatuses = map[string]bool{
	models.StatusBounce:  true,
	models.StatusOptOut:  true,
	models.StatusNoReply: true,
}

var cipStatuses = map[string]bool{
	models.StatusCIP:           true,
	models.StatusConversations: true,
}

func always(subject) bool { return true }

func anyActivity(s subject) bool { return len(s.acts) > 0 }

func moreThanOne(s subject) bool { return len(s.acts) > 1 }

func anyWhere(pred func(models.Activity) bool) metricFunc {
	return func(s subject) bool {
		for _, a := range s.acts {
			if pred(a) {
				return true
			}
		}
		return false
	}
}

func statusIs(status string) metricFunc {
	return anyWhere(func(a models.Activity) bool {
		return a.StatusValue() == status
	})
}

func statusIn(set map[string]bool) metricFunc {
	return anyWhere(func(a models.Activity) bool {
		return set[a.StatusValue()]
	})
}

// statusNotIn matches a non-empty status outside the excluded set. A missing
// status never matches.
func statusNotIn(excluded ...map[string]bool) metricFunc {
	return anyWhere(func(a models.Activity) bool {
		status := a.StatusValue()
		if status == "" {
			return false
		}
		for _, set := range excluded {
			if set[status] {
				return false
			}
		}
		return true
	})
}

func stageIs(stage string) metricFunc {
	return func(s subject) bool {
		return s.contact.Stage == stage
	}
}

// followUpIn matches when any channel activity has a next action date in
// the bucket. A contact can count toward several buckets at once.
func followUpIn(b dates.Bucket) metricFunc {
	return func(s subject) bool {
		for _, a := range s.acts {
			if a.NextActionDate != nil && dates.InBucket(*a.NextActionDate, b, s.now) {
				return true
			}
		}
		return false
	}
}

var followUpMetrics = []metric{
	{"todayFollowups", followUpIn(dates.BucketToday)},
	{"tomorrowFollowups", followUpIn(dates.BucketTomorrow)},
	{"missedFollowups", followUpIn(dates.BucketOverdue)},
}

var linkedinMetrics = []metric{
	{"connectionSent", anyWhere(func(a models.Activity) bool { return a.LnRequestSent })},
	{"accepted", anyWhere(func(a models.Activity) bool { return a.Connected })},
	{"followUps", moreThanOne},
	{"cip", statusIn(cipStatuses)},
	{"meetingProposed", statusIs(models.StatusMeetingProposed)},
	{"scheduled", statusIs(models.StatusMeetingScheduled)},
	{"completed", statusIs(models.StatusMeetingCompleted)},
	{"sql", stageIs(models.StageSQL)},
	{"win", stageIs(models.StageWon)},
}

var callMetrics = []metric{
	{"allProspects", always},
	{"callsAttempted", anyActivity},
	{"callsConnected", statusNotIn(unreachedCallStatuses)},
	{"decisionMakerReached", statusNotIn(unreachedCallStatuses, map[string]bool{models.CallStatusNotInterested: true})},
	{"interested", statusIs(models.CallStatusInterested)},
	{"notInterested", statusIs(models.CallStatusNotInterested)},
	{"detailsShared", statusIs(models.CallStatusDetailsShared)},
	{"demoBooked", statusIs(models.CallStatusDemoBooked)},
	{"demoCompleted", statusIs(models.CallStatusDemoCompleted)},
	{"sql", stageIs(models.StageSQL)},
	{"won", stageIs(models.StageWon)},
}

var emailMetrics = []metric{
	{"emailsSent", anyActivity},
	{"accepted", statusNotIn(undeliveredEmailStatuses)},
	{"cip", statusIn(cipStatuses)},
	{"meetingProposed", statusIs(models.StatusMeetingProposed)},
	{"scheduled", statusIs(models.StatusMeetingScheduled)},
	{"completed", statusIs(models.StatusMeetingCompleted)},
	{"sql", stageIs(models.StageSQL)},
	{"emailBounce", statusIs(models.StatusBounce)},
}

// legacyAliases maps names kept alive by saved filter links to the metric
// that replaced them.
var legacyAliases = map[models.Channel]map[string]string{
	models.ChannelLinkedIn: {
		"followups":               "followUps",
		"connectionRequestsSent":  "connectionSent",
		"connectionsSent":         "connectionSent",
		"connectionsAccepted":     "accepted",
		"conversationsInProgress": "cip",
		"meetingsProposed":        "meetingProposed",
		"meetingsScheduled":       "scheduled",
		"meetingScheduled":        "scheduled",
		"meetingsCompleted":       "completed",
		"meetingCompleted":        "completed",
		"won":                     "win",
	},
	models.ChannelCall: {
		"totalCalls":     "callsAttempted",
		"totalProspects": "allProspects",
		"callAnswerRate": "callsConnected",
		"connectedCalls": "callsConnected",
		"dmReached":      "decisionMakerReached",
		"demosBooked":    "demoBooked",
		"demosCompleted": "demoCompleted",
		"win":            "won",
	},
	models.ChannelEmail: {
		"emailOpenRate":           "accepted",
		"bounceRate":              "emailBounce",
		"bounced":                 "emailBounce",
		"conversationsInProgress": "cip",
		"meetingsProposed":        "meetingProposed",
		"meetingScheduled":        "scheduled",
		"meetingCompleted":        "completed",
	},
}

func channelMetrics(ch models.Channel) []metric {
	var base []metric
	switch ch {
	case models.ChannelLinkedIn:
		base = linkedinMetrics
	case models.ChannelCall:
		base = callMetrics
	case models.ChannelEmail:
		base = emailMetrics
	default:
		return nil
	}
	out := make([]metric, 0, len(base)+len(followUpMetrics))
	out = append(out, base...)
	return append(out, followUpMetrics...)
}
