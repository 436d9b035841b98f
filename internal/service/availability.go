package service

import "github.com/apnchris/semaine/internal/domain"

// resolveAvailability computes a single availability boolean for a variant
// from three inconsistent signals. Precedence, highest first:
//
//  1. An explicit availableForSale boolean from Shopify is authoritative.
//  2. Inventory policy CONTINUE means backorders are permitted: available
//     regardless of quantity.
//  3. Otherwise (DENY or no policy): available iff the quantity parses to a
//     number greater than zero. An absent or unparseable quantity means
//     inventory tracking is disabled, which defaults to available.
func resolveAvailability(v domain.Variant) bool {
	if v.AvailableForSale != nil {
		return *v.AvailableForSale
	}
	if v.InventoryPolicy == domain.InventoryPolicyContinue {
		return true
	}
	qty, ok := v.InventoryQuantity.Value()
	if !ok {
		return true
	}
	return qty > 0
}
