package domain

import "errors"

var (
	ErrStreetNameRequired  = errors.New("street name required")
	ErrLotNameRequired     = errors.New("lot name required")
	ErrProductNameRequired = errors.New("product name required")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrStreetExists        = errors.New("street already exists")
	ErrLotExists           = errors.New("lot already exists")
	ErrStreetNotFound      = errors.New("street not found")
	ErrLotNotFound         = errors.New("lot not found")
	ErrProductNotFound     = errors.New("product not found")
)

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrStreetNameRequired) ||
		errors.Is(err, ErrLotNameRequired) ||
		errors.Is(err, ErrProductNameRequired) ||
		errors.Is(err, ErrInvalidQuantity)
}

// IsNotFound reports whether err is a missing street, lot or product.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStreetNotFound) ||
		errors.Is(err, ErrLotNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// IsConflict reports whether err is a duplicate street or lot.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStreetExists) || errors.Is(err, ErrLotExists)
}
