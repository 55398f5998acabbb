package domain

import "errors"

var (
	// ErrAssetNotFound signals that the requested symbol has no stored record.
	// Callers that expect absence (update-else-create flows) recover from it;
	// everywhere else it surfaces to the caller
	ErrAssetNotFound = errors.New("asset not found in store")

	// ErrAssetAlreadyExists signals a creation collision and is always a
	// user-correctable validation failure
	ErrAssetAlreadyExists = errors.New("asset already exists in store")

	// ErrPriceDataUnavailable signals that the vendor returned no usable data
	// for a symbol. On creation it is fatal (nothing is persisted); on refresh
	// of an asset with cached history it is tolerable (last-known history is
	// kept)
	ErrPriceDataUnavailable = errors.New("no price data available for symbol")
)
