package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"posbridge/internal/domain"
)

const (
	squareDefaultBaseURL = "https://connect.squareup.com"
	squareAPIVersion     = "2024-01-18"
	squareMaxPages       = 10
)

type squareCredentials struct {
	APIKey     string `mapstructure:"apiKey" validate:"required"`
	LocationID string `mapstructure:"locationId"`
	APIBaseURL string `mapstructure:"apiBaseUrl" validate:"omitempty,url"`
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squareModifier struct {
	UID            string      `json:"uid"`
	Name           string      `json:"name"`
	BasePriceMoney squareMoney `json:"base_price_money"`
}

type squareLineItem struct {
	UID            string           `json:"uid"`
	Name           string           `json:"name"`
	Quantity       decimal.Decimal  `json:"quantity"`
	BasePriceMoney squareMoney      `json:"base_price_money"`
	Modifiers      []squareModifier `json:"modifiers"`
}

type squareOrder struct {
	ID            string           `json:"id"`
	ReferenceID   string           `json:"reference_id"`
	TicketName    string           `json:"ticket_name"`
	State         string           `json:"state"`
	CreatedAt     flexTime         `json:"created_at"`
	UpdatedAt     flexTime         `json:"updated_at"`
	LineItems     []squareLineItem `json:"line_items"`
	TotalMoney    squareMoney      `json:"total_money"`
	TotalTaxMoney squareMoney      `json:"total_tax_money"`
	TotalTipMoney *squareMoney     `json:"total_tip_money"`
}

type squareSearchRequest struct {
	LocationIDs []string          `json:"location_ids"`
	Query       squareSearchQuery `json:"query"`
	Cursor      string            `json:"cursor,omitempty"`
	Limit       int               `json:"limit"`
}

type squareSearchQuery struct {
	Filter struct {
		StateFilter struct {
			States []string `json:"states"`
		} `json:"state_filter"`
	} `json:"filter"`
	Sort struct {
		SortField string `json:"sort_field"`
		SortOrder string `json:"sort_order"`
	} `json:"sort"`
}

type squareSearchResponse struct {
	Orders []squareOrder `json:"orders"`
	Cursor string        `json:"cursor"`
}

type squareLocationsResponse struct {
	Locations []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"locations"`
}

// squareAdapter Square Orders API; стол ищется по reference_id или ticket_name
type squareAdapter struct {
	locationID string
	client     *vendorClient
	log        logrus.FieldLogger
}

func newSquareAdapter(creds map[string]string, o options) (*squareAdapter, error) {
	var c squareCredentials
	if err := parseCredentials(domain.ProviderSquare, creds, &c); err != nil {
		return nil, err
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = squareDefaultBaseURL
	}
	client := newVendorClient(c.APIBaseURL, o.httpClient)
	client.setHeader("Authorization", "Bearer "+c.APIKey)
	client.setHeader("Square-Version", squareAPIVersion)
	return &squareAdapter{
		locationID: c.LocationID,
		client:     client,
		log:        o.logger.WithField("provider", domain.ProviderSquare),
	}, nil
}

func (a *squareAdapter) Provider() domain.POSProvider { return domain.ProviderSquare }

func (a *squareAdapter) GetReceiptForTable(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error) {
	r, err := a.fetch(ctx, tableID, restaurantID)
	if err != nil {
		return nil, domain.NewPosIntegrationError(domain.ProviderSquare, err)
	}
	return r, nil
}

func (a *squareAdapter) fetch(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error) {
	locations, err := a.locations(ctx)
	if err != nil {
		return nil, err
	}

	var matching []squareOrder
	req := squareSearchRequest{LocationIDs: locations, Limit: 500}
	req.Query.Filter.StateFilter.States = []string{"OPEN"}
	req.Query.Sort.SortField = "UPDATED_AT"
	req.Query.Sort.SortOrder = "DESC"
	for page := 0; page < squareMaxPages; page++ {
		var resp squareSearchResponse
		if err := a.client.postJSON(ctx, "/v2/orders/search", req, &resp); err != nil {
			return nil, err
		}
		for _, o := range resp.Orders {
			if mentionsTable(o.ReferenceID, tableID) || mentionsTable(o.TicketName, tableID) {
				matching = append(matching, o)
			}
		}
		if resp.Cursor == "" {
			break
		}
		req.Cursor = resp.Cursor
	}

	best, ok := latest(matching, func(o squareOrder) time.Time { return o.UpdatedAt.Time })
	if !ok {
		return nil, fmt.Errorf("no open order found for table %s", tableID)
	}
	a.log.WithFields(logrus.Fields{"table_id": tableID, "order": best.ID, "matching": len(matching)}).Debug("selected square order")
	return mapSquareOrder(best, tableID, restaurantID)
}

func (a *squareAdapter) locations(ctx context.Context) ([]string, error) {
	if a.locationID != "" {
		return []string{a.locationID}, nil
	}
	var resp squareLocationsResponse
	if err := a.client.getJSON(ctx, "/v2/locations", nil, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		if l.Status == "" || l.Status == "ACTIVE" {
			ids = append(ids, l.ID)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("no active locations for merchant")
	}
	return ids, nil
}

func mapSquareOrder(o squareOrder, tableID, restaurantID string) (*domain.Receipt, error) {
	items := make([]domain.ReceiptItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		qty, err := quantity(li.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line item %s: %w", li.UID, err)
		}
		item := domain.ReceiptItem{
			ID:       li.UID,
			Name:     li.Name,
			Price:    minorMoney(li.BasePriceMoney.Amount),
			Quantity: qty,
		}
		for _, m := range li.Modifiers {
			item.Modifiers = append(item.Modifiers, domain.ReceiptItemModifier{
				ID:    m.UID,
				Name:  m.Name,
				Price: minorMoney(m.BasePriceMoney.Amount),
			})
		}
		items = append(items, item)
	}

	var tipCents int64
	var gratuity *float64
	if o.TotalTipMoney != nil && o.TotalTipMoney.Amount != 0 {
		tipCents = o.TotalTipMoney.Amount
		g := minorMoney(tipCents)
		gratuity = &g
	}
	// Square has no order-level subtotal; derive it from the authoritative total
	subtotalCents := o.TotalMoney.Amount - o.TotalTaxMoney.Amount - tipCents

	status := domain.ReceiptStatusOpen
	switch o.State {
	case "COMPLETED":
		status = domain.ReceiptStatusPaid
	case "CANCELED":
		status = domain.ReceiptStatusClosed
	}

	return &domain.Receipt{
		ID:           o.ID,
		TableID:      tableID,
		RestaurantID: restaurantID,
		Items:        items,
		Subtotal:     minorMoney(subtotalCents),
		Tax:          minorMoney(o.TotalTaxMoney.Amount),
		Total:        minorMoney(o.TotalMoney.Amount),
		Gratuity:     gratuity,
		Status:       status,
		CreatedAt:    o.CreatedAt.Time,
		UpdatedAt:    o.UpdatedAt.Time,
	}, nil
}
