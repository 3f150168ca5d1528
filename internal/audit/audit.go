package audit

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

// ActivityLog is an append-only record of who did what to which entity.
type ActivityLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ActorID    int64     `gorm:"index" json:"actor_id"`
	Action     string    `gorm:"index" json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

// Recorder appends activity records. Best-effort: a failed write is logged
// and never propagated into the workflow that triggered it.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string) {
	entry := ActivityLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("audit write failed actor=%d action=%s: %v", actorID, action, err)
	}
}

func (r *Recorder) ListForEntity(ctx context.Context, entityType string, entityID int64) ([]ActivityLog, error) {
	var logs []ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
