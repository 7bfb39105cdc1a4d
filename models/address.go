package models

// DeliveryAddress is one saved address on a customer profile. At most one
// address per profile carries the default flag.
type DeliveryAddress struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FullText  string `json:"full_text"`
	Area      string `json:"area"`
	City      string `json:"city"`
	Building  string `json:"building,omitempty"`
	Floor     string `json:"floor,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// Resolved formats the address as the single free-text line stored on an
// order.
func (a DeliveryAddress) Resolved() string {
	text := a.FullText
	if a.Building != "" {
		text += ", building " + a.Building
	}
	if a.Floor != "" {
		text += ", floor " + a.Floor
	}
	if a.Apartment != "" {
		text += ", apt " + a.Apartment
	}
	if a.Area != "" {
		text += ", " + a.Area
	}
	if a.City != "" {
		text += ", " + a.City
	}
	return text
}

// CustomerProfile is the per-customer record stored under
// "profile:<customer_id>".
type CustomerProfile struct {
	CustomerID uint              `json:"customer_id"`
	Addresses  []DeliveryAddress `json:"addresses"`
}

// DefaultAddress returns the address marked default, or nil.
func (p *CustomerProfile) DefaultAddress() *DeliveryAddress {
	for i := range p.Addresses {
		if p.Addresses[i].IsDefault {
			return &p.Addresses[i]
		}
	}
	return nil
}

// FindAddress returns the address with the given id, or nil.
func (p *CustomerProfile) FindAddress(id string) *DeliveryAddress {
	for i := range p.Addresses {
		if p.Addresses[i].ID == id {
			return &p.Addresses[i]
		}
	}
	return nil
}
