package meeting

import "github.com/go-onboard-api/internal/domain"

type flexObj = map[string]interface{}

// BuildFlexMessage renders the meeting invitation bubble and wraps it in the
// push envelope the messaging API expects. The layout mirrors the operator
// console's invitation card: header block with title/time/description, an
// attendee list, and a footer with the join-link button (or its placeholder).
func BuildFlexMessage(event *domain.MeetingEvent, groupID, meetingLink string) flexObj {
	names := AttendeeNames(event)

	var joinAction flexObj
	if meetingLink != "" {
		joinAction = flexObj{
			"type":   "button",
			"style":  "primary",
			"color":  "#6C63FF",
			"action": flexObj{"type": "uri", "label": "Join meeting", "uri": meetingLink},
		}
	} else {
		joinAction = flexObj{
			"type":  "text",
			"text":  NoMeetingLink,
			"color": "#999999",
			"size":  "sm",
			"align": "center",
		}
	}

	bubble := flexObj{
		"type": "bubble",
		"body": flexObj{
			"type":   "box",
			"layout": "vertical",
			"contents": []flexObj{
				{"type": "text", "text": event.Summary, "weight": "bold", "size": "lg", "wrap": true},
				{"type": "text", "text": event.Description, "wrap": true, "size": "sm", "color": "#555555"},
				{"type": "text", "text": event.Start.DateTime + " - " + event.End.DateTime, "size": "sm", "color": "#555555"},
				{"type": "text", "text": attendeeLine(names), "size": "sm", "color": "#aaaaaa", "wrap": true},
			},
		},
		"footer": flexObj{
			"type":     "box",
			"layout":   "vertical",
			"contents": []flexObj{joinAction},
		},
	}

	return flexObj{
		"to": groupID,
		"messages": []flexObj{
			{
				"type":     "flex",
				"altText":  "Meeting invitation: " + event.Summary,
				"contents": bubble,
			},
		},
	}
}
