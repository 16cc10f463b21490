package worker

import (
	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to ticket
// events. Delivery runs inside the publishing request.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker subscribed")
	}
}
