package meeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-onboard-api/internal/domain"
)

// Placeholder values for optional fields. Downstream rendering never has to
// null-check: absent description/link become these sentinels.
const (
	NoDescription = "(no description)"
	NoMeetingLink = "(no meeting link)"
)

const (
	wallClockLayout        = "2006-01-02T15:04"
	wallClockSecondsLayout = "2006-01-02T15:04:05"
)

// BuildEvent turns the meeting form and the resolved profiles into a
// normalized calendar-event payload. It is a pure transform: same inputs,
// same event, regardless of the machine's time zone.
func BuildEvent(form domain.MeetingForm, profiles []domain.GroupProfile, groupID, utcOffset, timeZone string) (*domain.MeetingEvent, error) {
	start, err := formatWallClock(form.StartTime, utcOffset)
	if err != nil {
		return nil, fmt.Errorf("start_time: %w", domain.ErrBadRequest)
	}
	end, err := formatWallClock(form.EndTime, utcOffset)
	if err != nil {
		return nil, fmt.Errorf("end_time: %w", domain.ErrBadRequest)
	}

	selected := selectProfiles(form.ParticipantIDs, profiles)
	attendees := make([]domain.EventAttendee, len(selected))
	for i, p := range selected {
		attendees[i] = domain.EventAttendee{
			DisplayName: "@" + p.DisplayName,
			Email:       p.Email,
		}
	}

	description := form.Description
	if description == "" {
		description = NoDescription
	}
	location := form.MeetingLink
	if location == "" {
		location = NoMeetingLink
	}

	return &domain.MeetingEvent{
		Summary:     form.Title,
		Description: description,
		Start:       domain.EventTime{DateTime: start, TimeZone: timeZone},
		End:         domain.EventTime{DateTime: end, TimeZone: timeZone},
		Attendees:   attendees,
		Location:    location,
		GroupID:     groupID,
	}, nil
}

// formatWallClock re-emits the submitted local calendar fields with the fixed
// offset literal appended. The input is parsed without any zone attached and
// formatted straight back out, so the numbers the user typed survive exactly.
// Routing through a zone-aware conversion here would silently shift them.
func formatWallClock(local, utcOffset string) (string, error) {
	t, err := time.Parse(wallClockLayout, local)
	if err != nil {
		t, err = time.Parse(wallClockSecondsLayout, local)
		if err != nil {
			return "", err
		}
	}
	return t.Format(wallClockSecondsLayout) + utcOffset, nil
}

// selectProfiles filters the resolved profiles down to the form's participant
// list, preserving the participant-id order.
func selectProfiles(participantIDs []string, profiles []domain.GroupProfile) []domain.GroupProfile {
	byID := make(map[string]domain.GroupProfile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	var out []domain.GroupProfile
	for _, pid := range participantIDs {
		if p, ok := byID[pid]; ok {
			out = append(out, p)
		}
	}
	return out
}

// AttendeeNames extracts the mention-marked display names from an event.
func AttendeeNames(event *domain.MeetingEvent) []string {
	names := make([]string, len(event.Attendees))
	for i, a := range event.Attendees {
		names[i] = a.DisplayName
	}
	return names
}

// attendeeLine renders the flex-message participant summary.
func attendeeLine(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
