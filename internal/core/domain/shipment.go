package domain

import "github.com/shopspring/decimal"

// ShipmentID identifies a shipment within a basket. The commerce API
// reserves the id "me" for the basket's implicit default shipment, which
// can be reconfigured but never removed.
type ShipmentID string

const DefaultShipmentID ShipmentID = "me"

func (id ShipmentID) IsDefault() bool {
	return id == DefaultShipmentID
}

type ShippingMethod struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name,omitempty"`
	Price              decimal.Decimal `json:"price"`
	StorePickupEnabled bool            `json:"c_storePickupEnabled,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address1,omitempty"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"state_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type Shipment struct {
	ID              ShipmentID      `json:"shipment_id"`
	ShippingMethod  *ShippingMethod `json:"shipping_method,omitempty"`
	FromStoreID     string          `json:"c_fromStoreId,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
}

// IsPickup reports whether the shipment is configured for in-store pickup.
func (s *Shipment) IsPickup() bool {
	return s != nil && s.ShippingMethod != nil && s.ShippingMethod.StorePickupEnabled
}

// ShippingMethodResult is the response of an applicable-shipping-methods
// fetch for one shipment.
type ShippingMethodResult struct {
	ApplicableShippingMethods []ShippingMethod `json:"applicable_shipping_methods"`
	DefaultShippingMethodID   string           `json:"default_shipping_method_id,omitempty"`
}

// ShipmentUpdate describes a partial shipment mutation. Zero/nil fields are
// left untouched by the server; a FromStoreID pointing at the empty string
// clears the attribute, and a zero-valued ShippingAddress clears the address.
type ShipmentUpdate struct {
	ShippingMethodID string
	FromStoreID      *string
	ShippingAddress  *Address
}
