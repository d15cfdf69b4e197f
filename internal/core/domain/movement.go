package domain

import "time"

type MovementKind string

const (
	MovementStreetAdded     MovementKind = "street_added"
	MovementLotAdded        MovementKind = "lot_added"
	MovementProductAssigned MovementKind = "product_assigned"
	MovementProductEdited   MovementKind = "product_edited"
	MovementProductDeleted  MovementKind = "product_deleted"
	MovementSold            MovementKind = "sold"
	MovementDepreciated     MovementKind = "depreciated"
)

// Movement is one applied mutation, kept as history per session.
// Quantity is the lot quantity after the mutation.
type Movement struct {
	ID        string
	SessionID string
	Kind      MovementKind
	Street    string
	Lot       string
	Product   string
	Quantity  int
	CreatedAt time.Time
}
