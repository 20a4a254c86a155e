package dto

// NotificationRecord is the server's shape of a notification.
type NotificationRecord struct {
	ID         ID          `json:"id"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	IsGlobal   bool        `json:"is_global"`
	CreatedAt  string      `json:"created_at"`
	TargetUser *UserRecord `json:"target_user,omitempty"`
}

// NotificationsEnvelope wraps list responses.
type NotificationsEnvelope struct {
	Notifications []NotificationRecord `json:"notifications"`
}

// NotificationEnvelope wraps admin/notifications/send/ responses.
type NotificationEnvelope struct {
	Message      string              `json:"message,omitempty"`
	Notification *NotificationRecord `json:"notification"`
}

// SendNotificationRequest payload for admin/notifications/send/.
type SendNotificationRequest struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	TargetUserID *ID    `json:"target_user_id,omitempty"`
}
