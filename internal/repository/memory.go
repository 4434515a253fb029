package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"posbridge/internal/domain"
)

// MemoryConfigs in-memory хранилище конфигураций, ключ restaurantId
type MemoryConfigs struct {
	mu           sync.RWMutex
	byRestaurant map[string]domain.RestaurantPOSConfig
}

func NewMemoryConfigs(seed ...domain.RestaurantPOSConfig) *MemoryConfigs {
	m := &MemoryConfigs{byRestaurant: make(map[string]domain.RestaurantPOSConfig, len(seed))}
	for _, c := range seed {
		m.byRestaurant[c.RestaurantID] = c.Clone()
	}
	return m
}

// LoadMemoryConfigs читает JSON-массив конфигураций из файла
func LoadMemoryConfigs(path string) (*MemoryConfigs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pos configs: %w", err)
	}
	var list []domain.RestaurantPOSConfig
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode pos configs: %w", err)
	}
	for i, c := range list {
		if strings.TrimSpace(c.RestaurantID) == "" {
			return nil, fmt.Errorf("pos config #%d: restaurantId is empty", i)
		}
	}
	return NewMemoryConfigs(list...), nil
}

var _ ConfigRepository = (*MemoryConfigs)(nil)

func (m *MemoryConfigs) ResolveConfig(_ context.Context, restaurantID string) (*domain.RestaurantPOSConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byRestaurant[restaurantID]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := c.Clone()
	return &cp, nil
}

// Put заменяет конфигурацию ресторана (сидинг и тесты)
func (m *MemoryConfigs) Put(c domain.RestaurantPOSConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRestaurant[c.RestaurantID] = c.Clone()
}

func (m *MemoryConfigs) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byRestaurant)
}

// All копии всех конфигураций, отсортированные по restaurantId
func (m *MemoryConfigs) All() []domain.RestaurantPOSConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RestaurantPOSConfig, 0, len(m.byRestaurant))
	for _, c := range m.byRestaurant {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RestaurantID < out[j].RestaurantID })
	return out
}
