package enums

import "slices"

// NotificationType classifies back-office notifications.
type NotificationType string

const (
	NotificationTypeOrderAlert NotificationType = "order_alert"
	NotificationTypeSystem     NotificationType = "system"
)

var notificationTypes = []NotificationType{NotificationTypeOrderAlert, NotificationTypeSystem}

func (n NotificationType) IsValid() bool { return slices.Contains(notificationTypes, n) }

func ParseNotificationType(value string) (NotificationType, error) {
	return parseMember("notification type", value, notificationTypes)
}
