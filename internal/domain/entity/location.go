package entity

import "time"

// Tipos de ubicación.
const (
	LocationTypeWarehouse = "warehouse"
	LocationTypeLocation  = "location"
)

// Location representa una bodega, rack o zona donde se almacena stock.
type Location struct {
	ID        string
	Name      string
	Address   string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
