package model

// Pincode is a serviceability record for a delivery area. Read-only input to
// checkout; never mutated by the order flow.
type Pincode struct {
	Pincode      string  `json:"pincode" db:"pincode"`
	City         *string `json:"city,omitempty" db:"city"`
	State        *string `json:"state,omitempty" db:"state"`
	CODAvailable bool    `json:"codAvailable" db:"cod_available"`
	DeliveryDays int     `json:"deliveryDays" db:"delivery_days"`
}

// PincodeLookupResponse is the serviceability answer for a pincode.
type PincodeLookupResponse struct {
	Serviceable  bool    `json:"serviceable"`
	CODAvailable bool    `json:"codAvailable"`
	DeliveryDays int     `json:"deliveryDays,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
}
