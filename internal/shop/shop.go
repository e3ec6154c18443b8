// Package shop implements the buy flow: debit currency, credit inventory,
// atomically, against the read-only shop catalog.
package shop

import (
	"github.com/tilehaven/roomserver/internal/apperrors"
	"github.com/tilehaven/roomserver/internal/avatar"
	"github.com/tilehaven/roomserver/internal/catalog"
)

// Buy attempts to purchase itemID for av against catalog's price list.
// On success it debits av.Currency and credits one unit of itemID to
// av.Inventory; on failure neither field is touched (currency is
// conserved either way — see the conservation test).
func Buy(av *avatar.Avatar, itemID string, shopCatalog *catalog.ShopCatalog) error {
	price, ok := shopCatalog.Price(itemID)
	if !ok {
		return apperrors.Validation("Buy", "unknown_item")
	}
	if av.Currency < price {
		return apperrors.Validation("Buy", "insufficient_funds")
	}
	av.Currency -= price
	av.Inventory[itemID]++
	return nil
}
