package service

import "context"

// SettingsStore persists client preferences.
type SettingsStore interface {
	NotificationsEnabled(ctx context.Context) (bool, error)
	SetNotificationsEnabled(ctx context.Context, enabled bool) error
}

// SettingsService exposes the local preferences screen.
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService builds the service.
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// NotificationsEnabled reports the flag, on by default.
func (s *SettingsService) NotificationsEnabled(ctx context.Context) (bool, error) {
	return s.store.NotificationsEnabled(ctx)
}

// SetNotificationsEnabled persists the flag.
func (s *SettingsService) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.store.SetNotificationsEnabled(ctx, enabled)
}

// ToggleNotifications flips the flag and returns the new value.
func (s *SettingsService) ToggleNotifications(ctx context.Context) (bool, error) {
	on, err := s.store.NotificationsEnabled(ctx)
	if err != nil {
		return false, err
	}
	if err := s.store.SetNotificationsEnabled(ctx, !on); err != nil {
		return false, err
	}
	return !on, nil
}
