package notification

import (
	"context"
	"log"

	"gorm.io/gorm"
)

// Service persists in-app notifications. Delivery is fire-and-forget:
// workflows never fail because a notification could not be written.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error {
	n := Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Body:       body,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("notification write failed user=%d type=%s: %v", userID, typ, err)
		return err
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var ns []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}
