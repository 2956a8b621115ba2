package services

import (
	"context"
	"log"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/utils"
)

// NotificationService exposes each user's notification feed. Suppliers are
// addressed by their supplier id, everyone else by their profile id.
type NotificationService struct {
	Repo      repository.NotificationRepository
	Directory repository.DirectoryRepository
	Logger    *log.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, directory repository.DirectoryRepository, logger *log.Logger) *NotificationService {
	return &NotificationService{Repo: repo, Directory: directory, Logger: logger}
}

func (s *NotificationService) recipientID(ctx context.Context, identity *auth.Identity) (string, error) {
	if identity.Role() != models.RoleSupplier {
		return identity.Profile.ID, nil
	}
	supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
	if err != nil {
		return "", err
	}
	return supplier.ID, nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, identity *auth.Identity, limitStr, offsetStr string) ([]models.Notification, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	userID, err := s.recipientID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListForUser(ctx, userID, limit, offset)
}

// UnreadCount returns how many notifications the caller has not read yet.
// Clients poll this endpoint to drive their badge.
func (s *NotificationService) UnreadCount(ctx context.Context, identity *auth.Identity) (int, error) {
	userID, err := s.recipientID(ctx, identity)
	if err != nil {
		return 0, err
	}
	return s.Repo.UnreadCount(ctx, userID)
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, identity *auth.Identity, notificationID string) error {
	userID, err := s.recipientID(ctx, identity)
	if err != nil {
		return err
	}
	return s.Repo.MarkRead(ctx, notificationID, userID)
}
