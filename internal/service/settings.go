package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmeshcher/coffeeshop-admin/internal/api"
	"github.com/mmeshcher/coffeeshop-admin/internal/model"
)

// Settings предоставляет доступ к настройкам магазина и часам работы.
type Settings struct {
	client *api.Client
	logger *zap.Logger
}

// NewSettings создаёт сервис настроек.
func NewSettings(client *api.Client, logger *zap.Logger) *Settings {
	return &Settings{
		client: client,
		logger: logger,
	}
}

// Get возвращает настройки магазина.
func (s *Settings) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := s.client.Get(ctx, "/admin/settings/", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update сохраняет настройки магазина.
func (s *Settings) Update(ctx context.Context, settings model.Settings) (*model.Settings, error) {
	var updated model.Settings
	if err := s.client.Put(ctx, "/admin/settings/", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BusinessHours возвращает часы работы магазина.
func (s *Settings) BusinessHours(ctx context.Context) ([]model.BusinessHours, error) {
	var hours []model.BusinessHours
	if err := s.client.Get(ctx, "/admin/business-hours/", nil, &hours); err != nil {
		return nil, err
	}
	return hours, nil
}

// UpdateBusinessHours сохраняет часы работы магазина.
func (s *Settings) UpdateBusinessHours(ctx context.Context, hours []model.BusinessHours) ([]model.BusinessHours, error) {
	var updated []model.BusinessHours
	if err := s.client.Put(ctx, "/admin/business-hours/", hours, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}
