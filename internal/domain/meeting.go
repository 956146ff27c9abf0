package domain

// MeetingForm is the operator's meeting form input. Start/end times arrive as
// local wall-clock strings ("2006-01-02T15:04") straight from a
// datetime-local input.
type MeetingForm struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description"`
	StartTime      string   `json:"start_time" validate:"required"`
	EndTime        string   `json:"end_time" validate:"required"`
	ParticipantIDs []string `json:"participants" validate:"required,min=1"`
	MeetingLink    string   `json:"meeting_link"`
	GroupKey       string   `json:"group_key"`
}

// MeetingEvent is the normalized calendar-event payload sent to the workflow
// service. Start and end carry the operator's wall-clock fields verbatim with
// the fixed offset literal appended; no time-zone conversion is ever applied.
type MeetingEvent struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Start       EventTime       `json:"start"`
	End         EventTime       `json:"end"`
	Attendees   []EventAttendee `json:"attendees"`
	Location    string          `json:"location"`
	GroupID     string          `json:"groupId"`
}

// EventTime pairs a fixed-offset instant string with its IANA zone name.
type EventTime struct {
	DateTime string `json:"dateTime"` // 2006-01-02T15:04:05±07:00
	TimeZone string `json:"timeZone"`
}

// EventAttendee is a meeting participant as the workflow service sees it.
type EventAttendee struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// DispatchResult reports a single push attempt to the messaging platform.
// Status and Body carry the upstream response verbatim so callers can tell
// "not sent" apart from "sent but upstream errored".
type DispatchResult struct {
	Sent   bool   `json:"sent"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}
