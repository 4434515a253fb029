package domain

import "fmt"

// ConfigNotFoundError у ресторана нет конфигурации POS
type ConfigNotFoundError struct {
	RestaurantID string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no POS configuration for restaurant %q", e.RestaurantID)
}

// UnsupportedProviderError провайдер не входит в известный набор
type UnsupportedProviderError struct {
	Provider POSProvider
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported POS provider %q", string(e.Provider))
}

// PosIntegrationError любая ошибка общения с вендором или разбора его ответа
type PosIntegrationError struct {
	Provider POSProvider
	Err      error
}

func NewPosIntegrationError(p POSProvider, err error) *PosIntegrationError {
	return &PosIntegrationError{Provider: p, Err: err}
}

func (e *PosIntegrationError) Error() string {
	msg := "Unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("Failed to fetch receipt from %s: %s", e.Provider.DisplayName(), msg)
}

func (e *PosIntegrationError) Unwrap() error { return e.Err }
