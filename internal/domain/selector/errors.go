package selector

import "errors"

// Sentinel kinds for catalog validation.
var (
	ErrEmptyCatalog     = errors.New("empty game catalog")
	ErrSingletonCatalog = errors.New("catalog needs at least two games")
)
