package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"posbridge/internal/domain"
)

// posConfigRow строка таблицы pos_configs
type posConfigRow struct {
	RestaurantID    string    `gorm:"primaryKey;size:100"`
	Provider        string    `gorm:"size:50;not null"`
	CredentialsJSON []byte    `gorm:"column:credentials;type:json"`
	TablesJSON      []byte    `gorm:"column:tables;type:json"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (posConfigRow) TableName() string { return "pos_configs" }

// GormConfigs хранилище конфигураций в MySQL
type GormConfigs struct {
	db *gorm.DB
}

func NewGormConfigs(db *gorm.DB) *GormConfigs { return &GormConfigs{db: db} }

var _ ConfigRepository = (*GormConfigs)(nil)

func (g *GormConfigs) Migrate(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(&posConfigRow{})
}

func (g *GormConfigs) ResolveConfig(ctx context.Context, restaurantID string) (*domain.RestaurantPOSConfig, error) {
	var row posConfigRow
	err := g.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query pos config: %w", err)
	}
	return row.toDomain()
}

// Save upsert конфигурации (административный сидинг)
func (g *GormConfigs) Save(ctx context.Context, c domain.RestaurantPOSConfig) error {
	row, err := rowFromDomain(c)
	if err != nil {
		return err
	}
	return g.db.WithContext(ctx).Save(&row).Error
}

func (r posConfigRow) toDomain() (*domain.RestaurantPOSConfig, error) {
	c := domain.RestaurantPOSConfig{
		RestaurantID: r.RestaurantID,
		Provider:     domain.POSProvider(r.Provider),
		Credentials:  map[string]string{},
	}
	if len(r.CredentialsJSON) > 0 {
		if err := json.Unmarshal(r.CredentialsJSON, &c.Credentials); err != nil {
			return nil, fmt.Errorf("decode credentials of %s: %w", r.RestaurantID, err)
		}
	}
	if len(r.TablesJSON) > 0 {
		if err := json.Unmarshal(r.TablesJSON, &c.Tables); err != nil {
			return nil, fmt.Errorf("decode tables of %s: %w", r.RestaurantID, err)
		}
	}
	return &c, nil
}

func rowFromDomain(c domain.RestaurantPOSConfig) (posConfigRow, error) {
	creds, err := json.Marshal(c.Credentials)
	if err != nil {
		return posConfigRow{}, err
	}
	tables, err := json.Marshal(c.Tables)
	if err != nil {
		return posConfigRow{}, err
	}
	return posConfigRow{
		RestaurantID:    c.RestaurantID,
		Provider:        string(c.Provider),
		CredentialsJSON: creds,
		TablesJSON:      tables,
	}, nil
}
