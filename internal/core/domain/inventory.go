package domain

import "strings"

type Lot struct {
	Name        string `json:"name"`
	Product     string `json:"product"`
	Quantity    int    `json:"quantity"`
	Sold        int    `json:"sold"`
	Depreciated int    `json:"depreciated"`
}

// Assigned reports whether the lot currently holds a product.
func (l Lot) Assigned() bool {
	return l.Product != ""
}

type Street struct {
	Name string `json:"name"`
	Lots []Lot  `json:"lots"`
}

// Location is where a product was found.
type Location struct {
	Street   string
	Lot      string
	Quantity int
}

// Inventory is the street/lot tree owned by a single session.
// Lookups by name return the first match, so snapshots written before names
// were unique still resolve deterministically.
type Inventory struct {
	Streets []Street
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (inv *Inventory) street(name string) *Street {
	for i := range inv.Streets {
		if inv.Streets[i].Name == name {
			return &inv.Streets[i]
		}
	}
	return nil
}

func (s *Street) lot(name string) *Lot {
	for i := range s.Lots {
		if s.Lots[i].Name == name {
			return &s.Lots[i]
		}
	}
	return nil
}

func (inv *Inventory) lot(streetName, lotName string) (*Lot, error) {
	if blank(streetName) {
		return nil, ErrStreetNameRequired
	}
	if blank(lotName) {
		return nil, ErrLotNameRequired
	}
	street := inv.street(streetName)
	if street == nil {
		return nil, ErrStreetNotFound
	}
	lot := street.lot(lotName)
	if lot == nil {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

func (inv *Inventory) AddStreet(name string) error {
	if blank(name) {
		return ErrStreetNameRequired
	}
	if inv.street(name) != nil {
		return ErrStreetExists
	}
	inv.Streets = append(inv.Streets, Street{Name: name, Lots: []Lot{}})
	return nil
}

func (inv *Inventory) AddLot(streetName, lotName string) error {
	if blank(streetName) {
		return ErrStreetNameRequired
	}
	if blank(lotName) {
		return ErrLotNameRequired
	}
	street := inv.street(streetName)
	if street == nil {
		return ErrStreetNotFound
	}
	if street.lot(lotName) != nil {
		return ErrLotExists
	}
	street.Lots = append(street.Lots, Lot{Name: lotName})
	return nil
}

// AssignProduct places a product in a lot and starts its counters over.
func (inv *Inventory) AssignProduct(streetName, lotName, product string, quantity int) error {
	if err := validateProduct(product, quantity); err != nil {
		return err
	}
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return err
	}
	lot.Product = product
	lot.Quantity = quantity
	lot.Sold = 0
	lot.Depreciated = 0
	return nil
}

// EditProduct changes product and quantity but keeps the sold and
// depreciated counters.
func (inv *Inventory) EditProduct(streetName, lotName, product string, quantity int) error {
	if err := validateProduct(product, quantity); err != nil {
		return err
	}
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return err
	}
	lot.Product = product
	lot.Quantity = quantity
	return nil
}

func (inv *Inventory) DeleteProduct(streetName, lotName string) error {
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return err
	}
	*lot = Lot{Name: lot.Name}
	return nil
}

// MarkSold records one unit sold. Quantity is not floored at zero.
func (inv *Inventory) MarkSold(streetName, lotName string) error {
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return err
	}
	lot.Sold++
	lot.Quantity--
	return nil
}

// MarkDepreciated removes one unit as depreciated. The depreciated counter
// runs downwards, the report adds it back onto quantity.
func (inv *Inventory) MarkDepreciated(streetName, lotName string) error {
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return err
	}
	lot.Depreciated--
	lot.Quantity--
	return nil
}

// FindByProduct returns the first lot holding product, scanning streets in
// order and lots in order. Matching is exact and case-sensitive.
func (inv Inventory) FindByProduct(product string) (Location, error) {
	if product == "" {
		return Location{}, ErrProductNotFound
	}
	for _, street := range inv.Streets {
		for _, lot := range street.Lots {
			if lot.Product == product {
				return Location{Street: street.Name, Lot: lot.Name, Quantity: lot.Quantity}, nil
			}
		}
	}
	return Location{}, ErrProductNotFound
}

// Lot returns a copy of the named lot.
func (inv Inventory) Lot(streetName, lotName string) (Lot, bool) {
	lot, err := inv.lot(streetName, lotName)
	if err != nil {
		return Lot{}, false
	}
	return *lot, true
}

// Clone returns a deep copy safe to hand outside the owning session.
func (inv Inventory) Clone() Inventory {
	out := Inventory{Streets: make([]Street, len(inv.Streets))}
	for i, street := range inv.Streets {
		lots := make([]Lot, len(street.Lots))
		copy(lots, street.Lots)
		out.Streets[i] = Street{Name: street.Name, Lots: lots}
	}
	return out
}

// LotCount is the number of lots across all streets.
func (inv Inventory) LotCount() int {
	n := 0
	for _, street := range inv.Streets {
		n += len(street.Lots)
	}
	return n
}

func validateProduct(product string, quantity int) error {
	if blank(product) {
		return ErrProductNameRequired
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
