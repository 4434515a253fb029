package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"posbridge/internal/config"
	"posbridge/internal/domain"
	"posbridge/internal/pos"
	"posbridge/internal/repository"
)

//go:generate mockgen -destination=mocks/adapter_factory.go -package=mocks posbridge/internal/service AdapterFactory
//go:generate mockgen -destination=mocks/config_repository.go -package=mocks posbridge/internal/repository ConfigRepository

var ErrInvalidInput = errors.New("invalid input")

// AdapterFactory строит адаптер вендора по провайдеру и ключам
type AdapterFactory interface {
	NewAdapter(provider domain.POSProvider, credentials map[string]string) (pos.Adapter, error)
}

// ReceiptService находит конфигурацию ресторана и отдаёт чек стола через адаптер его POS
type ReceiptService struct {
	configs  repository.ConfigRepository
	adapters AdapterFactory
	log      logrus.FieldLogger
}

func NewReceiptService(configs repository.ConfigRepository, adapters AdapterFactory, log logrus.FieldLogger) *ReceiptService {
	return &ReceiptService{configs: configs, adapters: adapters, log: log.WithField("module", "receipt_service")}
}

// GetReceiptForTable возвращает текущий открытый чек стола
func (s *ReceiptService) GetReceiptForTable(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error) {
	if strings.TrimSpace(tableID) == "" || strings.TrimSpace(restaurantID) == "" {
		return nil, ErrInvalidInput
	}
	cfg, err := s.resolve(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	adapter, err := s.adapters.NewAdapter(cfg.Provider, cfg.Credentials)
	if err != nil {
		config.LogError(s.log, "receipt_service", "GetReceiptForTable", "build adapter",
			logrus.Fields{"restaurant_id": restaurantID, "provider": cfg.Provider}, err)
		return nil, err
	}

	fields := logrus.Fields{"restaurant_id": restaurantID, "table_id": tableID, "provider": cfg.Provider}
	receipt, err := adapter.GetReceiptForTable(ctx, tableID, restaurantID)
	if err != nil {
		s.log.WithFields(fields).WithError(err).Warn("vendor receipt fetch failed")
		return nil, err
	}
	// vendor totals win; a mismatch is only reported
	if !receipt.TotalsConsistent() {
		s.log.WithFields(fields).WithFields(logrus.Fields{
			"receipt_id": receipt.ID,
			"subtotal":   receipt.Subtotal,
			"tax":        receipt.Tax,
			"gratuity":   receipt.Gratuity,
			"total":      receipt.Total,
		}).Warn("receipt totals do not add up")
	}
	s.log.WithFields(fields).WithField("receipt_id", receipt.ID).Debug("receipt fetched")
	return receipt, nil
}

// ListTables столы ресторана из его конфигурации
func (s *ReceiptService) ListTables(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, ErrInvalidInput
	}
	cfg, err := s.resolve(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if cfg.Tables == nil {
		return []domain.Table{}, nil
	}
	return cfg.Tables, nil
}

func (s *ReceiptService) resolve(ctx context.Context, restaurantID string) (*domain.RestaurantPOSConfig, error) {
	cfg, err := s.configs.ResolveConfig(ctx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &domain.ConfigNotFoundError{RestaurantID: restaurantID}
	}
	if err != nil {
		config.LogError(s.log, "receipt_service", "resolve", "resolve config", restaurantID, err)
		return nil, err
	}
	return cfg, nil
}
