package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/multiship/internal/core/domain"
)

// MySQLAdapter is the store directory backing the store locator and pickup
// store resolution.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	var (
		store       domain.Store
		inventoryID sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, inventory_id, name, address1, city, state_code, postal_code, country_code, phone, latitude, longitude
		FROM stores WHERE id = ?`, id,
	).Scan(&store.ID, &inventoryID, &store.Name, &store.Address1, &store.City,
		&store.StateCode, &store.PostalCode, &store.CountryCode, &store.Phone,
		&store.Latitude, &store.Longitude)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	store.InventoryID = inventoryID.String
	return &store, nil
}

func (m *MySQLAdapter) FindNearby(ctx context.Context, lat, lng float64, limit int) ([]domain.Store, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, inventory_id, name, address1, city, state_code, postal_code, country_code, phone, latitude, longitude,
			(6371 * ACOS(LEAST(1, GREATEST(-1,
				COS(RADIANS(?)) * COS(RADIANS(latitude)) * COS(RADIANS(longitude) - RADIANS(?)) +
				SIN(RADIANS(?)) * SIN(RADIANS(latitude))
			)))) AS distance_km
		FROM stores
		ORDER BY distance_km
		LIMIT ?`, lat, lng, lat, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query nearby stores: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var (
			store       domain.Store
			inventoryID sql.NullString
		)
		if err := rows.Scan(&store.ID, &inventoryID, &store.Name, &store.Address1, &store.City,
			&store.StateCode, &store.PostalCode, &store.CountryCode, &store.Phone,
			&store.Latitude, &store.Longitude, &store.DistanceKM); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		store.InventoryID = inventoryID.String
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return stores, nil
}
