package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptStatus состояние чека в POS
type ReceiptStatus string

const (
	ReceiptStatusOpen   ReceiptStatus = "open"
	ReceiptStatusClosed ReceiptStatus = "closed"
	ReceiptStatusPaid   ReceiptStatus = "paid"
)

// ReceiptItemModifier модификатор позиции (добавка к цене за единицу)
type ReceiptItemModifier struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ReceiptItem позиция в чеке
type ReceiptItem struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Price     float64               `json:"price"`
	Quantity  int                   `json:"quantity"`
	Modifiers []ReceiptItemModifier `json:"modifiers,omitempty"`
}

// Receipt каноничный чек стола, одинаковый для всех POS
type Receipt struct {
	ID           string        `json:"id"`
	TableID      string        `json:"tableId"`
	RestaurantID string        `json:"restaurantId"`
	Items        []ReceiptItem `json:"items"`
	Subtotal     float64       `json:"subtotal"`
	Tax          float64       `json:"tax"`
	Total        float64       `json:"total"`
	Gratuity     *float64      `json:"gratuity,omitempty"`
	Status       ReceiptStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// TotalsConsistent проверяет total == subtotal + tax + gratuity с точностью до 3 знаков (KWD, BHD)
func (r *Receipt) TotalsConsistent() bool {
	sum := decimal.NewFromFloat(r.Subtotal).Add(decimal.NewFromFloat(r.Tax))
	if r.Gratuity != nil {
		sum = sum.Add(decimal.NewFromFloat(*r.Gratuity))
	}
	return sum.Round(3).Equal(decimal.NewFromFloat(r.Total).Round(3))
}

// POSProvider поддерживаемые POS-вендоры
type POSProvider string

const (
	ProviderSquare   POSProvider = "square"
	ProviderToast    POSProvider = "toast"
	ProviderMicros   POSProvider = "micros"
	ProviderFoodics  POSProvider = "foodics"
	ProviderLoyverse POSProvider = "loyverse"
)

// Providers returns every known provider in a stable order.
func Providers() []POSProvider {
	return []POSProvider{ProviderSquare, ProviderToast, ProviderMicros, ProviderFoodics, ProviderLoyverse}
}

func (p POSProvider) Valid() bool {
	switch p {
	case ProviderSquare, ProviderToast, ProviderMicros, ProviderFoodics, ProviderLoyverse:
		return true
	default:
		return false
	}
}

// DisplayName имя вендора для сообщений об ошибках
func (p POSProvider) DisplayName() string {
	switch p {
	case ProviderSquare:
		return "Square"
	case ProviderToast:
		return "Toast"
	case ProviderMicros:
		return "Micros"
	case ProviderFoodics:
		return "Foodics"
	case ProviderLoyverse:
		return "Loyverse"
	default:
		return string(p)
	}
}

// Table стол ресторана
type Table struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seats int    `json:"seats,omitempty"`
}

// RestaurantPOSConfig конфигурация POS ресторана: провайдер и его ключи доступа
type RestaurantPOSConfig struct {
	RestaurantID string            `json:"restaurantId"`
	Provider     POSProvider       `json:"provider"`
	Credentials  map[string]string `json:"credentials"`
	Tables       []Table           `json:"tables,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (c RestaurantPOSConfig) Clone() RestaurantPOSConfig {
	cp := c
	if c.Credentials != nil {
		cp.Credentials = make(map[string]string, len(c.Credentials))
		for k, v := range c.Credentials {
			cp.Credentials[k] = v
		}
	}
	if c.Tables != nil {
		cp.Tables = append([]Table(nil), c.Tables...)
	}
	return cp
}
