// pkg/core/notification.go
package core

// NotificationLevel is the pacing category of a discovery notification.
type NotificationLevel string

const (
	LevelMajor      NotificationLevel = "major"
	LevelMinor      NotificationLevel = "minor"
	LevelBackground NotificationLevel = "background"
)

// Notification is a HUD/audio-facing discovery announcement.
type Notification struct {
	Title   string
	Message string
	Level   NotificationLevel
}
