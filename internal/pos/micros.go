package pos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"posbridge/internal/domain"
)

type microsCredentials struct {
	APIEndpoint string `mapstructure:"apiEndpoint" validate:"required,url"`
	APIKey      string `mapstructure:"apiKey" validate:"required"`
	LocationID  string `mapstructure:"locationId" validate:"required"`
}

type microsCondiment struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

type microsMenuItem struct {
	LineNum    int               `json:"lineNum"`
	MenuItemID string            `json:"menuItemId"`
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Quantity   decimal.Decimal   `json:"quantity"`
	Condiments []microsCondiment `json:"condiments"`
}

type microsCheck struct {
	Header struct {
		CheckRef        string   `json:"checkRef"`
		CheckNumber     int      `json:"checkNumber"`
		TableName       string   `json:"tableName"`
		Status          string   `json:"status"`
		OpenTime        flexTime `json:"openTime"`
		LastUpdatedTime flexTime `json:"lastUpdatedTime"`
	} `json:"header"`
	MenuItems []microsMenuItem `json:"menuItems"`
	Totals    struct {
		SubTotal decimal.Decimal  `json:"subTotal"`
		TaxTotal decimal.Decimal  `json:"taxTotal"`
		Total    decimal.Decimal  `json:"total"`
		TipTotal *decimal.Decimal `json:"tipTotal"`
	} `json:"totals"`
}

type microsChecksResponse struct {
	Checks []microsCheck `json:"checks"`
}

// microsAdapter Oracle MICROS Simphony: открытые чеки локации по имени стола
type microsAdapter struct {
	locationID string
	client     *vendorClient
	log        logrus.FieldLogger
}

func newMicrosAdapter(creds map[string]string, o options) (*microsAdapter, error) {
	var c microsCredentials
	if err := parseCredentials(domain.ProviderMicros, creds, &c); err != nil {
		return nil, err
	}
	client := newVendorClient(c.APIEndpoint, o.httpClient)
	client.setHeader("Authorization", "Bearer "+c.APIKey)
	return &microsAdapter{
		locationID: c.LocationID,
		client:     client,
		log:        o.logger.WithField("provider", domain.ProviderMicros),
	}, nil
}

func (a *microsAdapter) Provider() domain.POSProvider { return domain.ProviderMicros }

func (a *microsAdapter) GetReceiptForTable(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error) {
	r, err := a.fetch(ctx, tableID, restaurantID)
	if err != nil {
		return nil, domain.NewPosIntegrationError(domain.ProviderMicros, err)
	}
	return r, nil
}

func (a *microsAdapter) fetch(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error) {
	params := url.Values{}
	params.Set("locRef", a.locationID)
	params.Set("tableName", tableID)
	params.Set("includeClosed", "false")
	var resp microsChecksResponse
	if err := a.client.getJSON(ctx, "/checks", params, &resp); err != nil {
		return nil, err
	}

	matching := make([]microsCheck, 0, len(resp.Checks))
	for _, c := range resp.Checks {
		if namesTable(c.Header.TableName, tableID) || mentionsTable(c.Header.TableName, tableID) {
			matching = append(matching, c)
		}
	}
	best, ok := latest(matching, func(c microsCheck) time.Time { return c.Header.LastUpdatedTime.Time })
	if !ok {
		return nil, fmt.Errorf("no open check found for table %s", tableID)
	}
	a.log.WithFields(logrus.Fields{"table_id": tableID, "check": best.Header.CheckRef}).Debug("selected micros check")
	return mapMicrosCheck(best, tableID, restaurantID)
}

func mapMicrosCheck(c microsCheck, tableID, restaurantID string) (*domain.Receipt, error) {
	items := make([]domain.ReceiptItem, 0, len(c.MenuItems))
	for _, mi := range c.MenuItems {
		qty, err := quantity(mi.Quantity)
		if err != nil {
			return nil, fmt.Errorf("menu item %s: %w", mi.MenuItemID, err)
		}
		item := domain.ReceiptItem{
			ID:       mi.MenuItemID + "-" + strconv.Itoa(mi.LineNum),
			Name:     mi.Name,
			Price:    money(mi.Price),
			Quantity: qty,
		}
		for _, cd := range mi.Condiments {
			item.Modifiers = append(item.Modifiers, domain.ReceiptItemModifier{
				ID:    cd.MenuItemID,
				Name:  cd.Name,
				Price: money(cd.Price),
			})
		}
		items = append(items, item)
	}

	status := domain.ReceiptStatusOpen
	switch c.Header.Status {
	case "Paid":
		status = domain.ReceiptStatusPaid
	case "Closed":
		status = domain.ReceiptStatusClosed
	}

	id := c.Header.CheckRef
	if id == "" {
		id = strconv.Itoa(c.Header.CheckNumber)
	}
	return &domain.Receipt{
		ID:           id,
		TableID:      tableID,
		RestaurantID: restaurantID,
		Items:        items,
		Subtotal:     money(c.Totals.SubTotal),
		Tax:          money(c.Totals.TaxTotal),
		Total:        money(c.Totals.Total),
		Gratuity:     optionalMoney(c.Totals.TipTotal),
		Status:       status,
		CreatedAt:    c.Header.OpenTime.Time,
		UpdatedAt:    c.Header.LastUpdatedTime.Time,
	}, nil
}
