package repository

import (
	"context"
	"errors"

	"posbridge/internal/domain"
)

// ErrNotFound возвращается, когда у ресторана нет конфигурации
var ErrNotFound = errors.New("not found")

// ConfigRepository поиск POS-конфигурации ресторана. Только чтение.
type ConfigRepository interface {
	ResolveConfig(ctx context.Context, restaurantID string) (*domain.RestaurantPOSConfig, error)
}

// DefaultConfigs демо-набор ресторанов для локального запуска
func DefaultConfigs() []domain.RestaurantPOSConfig {
	tables := func(ids ...string) []domain.Table {
		out := make([]domain.Table, 0, len(ids))
		for _, id := range ids {
			out = append(out, domain.Table{ID: id, Name: "Table " + id, Seats: 4})
		}
		return out
	}
	return []domain.RestaurantPOSConfig{
		{RestaurantID: "rest-1", Provider: domain.ProviderSquare, Credentials: map[string]string{"apiKey": "sq-demo-key"}, Tables: tables("1", "2", "3")},
		{RestaurantID: "rest-2", Provider: domain.ProviderToast, Credentials: map[string]string{"clientId": "toast-client", "clientSecret": "toast-secret"}, Tables: tables("1", "2")},
		{RestaurantID: "rest-3", Provider: domain.ProviderMicros, Credentials: map[string]string{"apiEndpoint": "https://simphony.example.com/api/v1", "apiKey": "micros-key", "locationId": "loc-1"}, Tables: tables("10", "11")},
		{RestaurantID: "rest-4", Provider: domain.ProviderFoodics, Credentials: map[string]string{"apiKey": "foodics-key", "businessId": "biz-1"}, Tables: tables("5", "6")},
		{RestaurantID: "rest-5", Provider: domain.ProviderLoyverse, Credentials: map[string]string{}, Tables: tables("11", "12")},
	}
}
