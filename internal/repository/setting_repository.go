package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// SettingRepository stores the flat key/value settings table (spec §4.9):
// digest schedule, theme, default model tier, and other preferences.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*entity.Setting, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]*entity.Setting, error)
	Delete(ctx context.Context, key string) error
}
