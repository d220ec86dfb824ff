package mysql

import (
	"context"

	"gorm.io/gorm"

	"Task_Mania/internal/model"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func (r *OutboxRepository) Add(ctx context.Context, ev *model.EventOutbox) error {
	ev.Status = model.OutboxPending
	return translate("add event", r.DB.WithContext(ctx).Create(ev).Error)
}

// List returns pending rows and failed rows that still have retries left,
// oldest first.
func (r *OutboxRepository) List(ctx context.Context, batchSize, maxRetry int) ([]model.EventOutbox, error) {
	var list []model.EventOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, translate("list outbox", err)
	}
	return list, nil
}

func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	err := r.DB.WithContext(ctx).Model(&model.EventOutbox{}).Where("id=?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
	return translate("mark outbox failed", err)
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	err := r.DB.WithContext(ctx).Model(&model.EventOutbox{}).Where("id=?", id).
		Update("status", model.OutboxSent).Error
	return translate("mark outbox sent", err)
}
