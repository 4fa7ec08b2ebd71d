package repository

import (
	"context"
)

// SettingsRepository defines the interface for key/value settings
type SettingsRepository interface {
	// GetMany returns the values stored for keys. Absent keys are omitted.
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	// Upsert writes every pair, inserting or replacing as needed.
	Upsert(ctx context.Context, values map[string]string) error
	// SetDefaults inserts pairs whose key does not exist yet.
	SetDefaults(ctx context.Context, values map[string]string) error
}
