package app

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// NotificationType selects a toast's prefix and color.
type NotificationType int

const (
	NotificationSuccess NotificationType = iota
	NotificationError
	NotificationWarning
	NotificationInfo
	// NotificationLoading is drawn with the spinner and never expires.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID of the single loading toast.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

var notificationTypeNames = map[NotificationType]string{
	NotificationSuccess: "success",
	NotificationError:   "error",
	NotificationWarning: "warning",
	NotificationInfo:    "info",
	NotificationLoading: "loading",
}

func (n NotificationType) String() string {
	if name, ok := notificationTypeNames[n]; ok {
		return name
	}
	return "unknown"
}

// Notification is one toast. A zero Duration keeps it until removed.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired reports whether the toast outlived its Duration.
func (n *Notification) IsExpired() bool {
	return n.Duration > 0 && time.Since(n.CreatedAt) > n.Duration
}

// toastQueue keeps at most maxNotifications toasts, oldest first. It is not
// safe for concurrent use; State guards it.
type toastQueue []Notification

func (q *toastQueue) push(n Notification) {
	*q = append(*q, n)
	if over := len(*q) - maxNotifications; over > 0 {
		*q = slices.Delete(*q, 0, over)
	}
}

func (q *toastQueue) remove(match func(Notification) bool) {
	*q = slices.DeleteFunc(*q, match)
}

func (q toastQueue) live() []Notification {
	out := make([]Notification, 0, len(q))
	for _, n := range q {
		if !n.IsExpired() {
			out = append(out, n)
		}
	}
	return out
}

// AddNotification queues a toast and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts.push(n)
	return n.ID
}

func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts.remove(func(n Notification) bool { return n.ID == id })
}

func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts.remove(func(n Notification) bool { return n.IsExpired() })
}

// GetNotifications returns the toasts that have not expired yet.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toasts.live()
}

// SetLoadingNotification shows message in the loading toast, creating it
// if needed.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.IndexFunc(s.toasts, func(n Notification) bool { return n.ID == LoadingNotificationID }); i >= 0 {
		s.toasts[i].Message = message
		return
	}
	s.toasts = append(s.toasts, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
