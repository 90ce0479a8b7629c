package domain

// Notification action identifiers.
const (
	ActionStartTimer = "start-timer"
	ActionDismiss    = "dismiss"
)

// Notification defaults.
const (
	DefaultNotificationTitle = "Study Companion"
	DefaultNotificationBody  = "Study Companion Notification"
	DefaultNotificationIcon  = "/assets/images/arona.png"
	DefaultNotificationBadge = "/assets/images/badge.png"
	DefaultNotificationTag   = "study-companion"
)

// NotificationAction is a button on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Notification is a titled notification shown to the user.
type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Tag                string               `json:"tag"`
	URL                string               `json:"url,omitempty"`
	RequireInteraction bool                 `json:"requireInteraction"`
	Actions            []NotificationAction `json:"actions"`
}

// Push is the payload of a push event.
type Push struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
	URL   string `json:"url"`
}

// NewNotification builds a notification from a push, filling defaults.
func NewNotification(p Push) Notification {
	n := Notification{
		Title:              p.Title,
		Body:               p.Body,
		Icon:               DefaultNotificationIcon,
		Badge:              DefaultNotificationBadge,
		Tag:                p.Tag,
		URL:                p.URL,
		RequireInteraction: true,
		Actions: []NotificationAction{
			{Action: ActionStartTimer, Title: "Start Focusing"},
			{Action: ActionDismiss, Title: "Dismiss"},
		},
	}
	if n.Title == "" {
		n.Title = DefaultNotificationTitle
	}
	if n.Body == "" {
		n.Body = DefaultNotificationBody
	}
	if n.Tag == "" {
		n.Tag = DefaultNotificationTag
	}
	if n.URL == "" {
		n.URL = "/"
	}
	return n
}

// NotificationClick is a user's click on a notification or one of its actions.
type NotificationClick struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}
