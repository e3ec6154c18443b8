package catalog

import (
	"embed"
	"encoding/json"
)

// ShopItem is one purchasable catalog entry: the furniture definitionId it
// grants and its price.
type ShopItem struct {
	ItemID string `json:"itemId"`
	Price  int    `json:"price"`
}

// ShopCatalog is the read-only, process-wide price list.
type ShopCatalog struct {
	byID map[string]ShopItem
}

// NewShopCatalog builds a catalog from a slice of items.
func NewShopCatalog(items []ShopItem) *ShopCatalog {
	m := make(map[string]ShopItem, len(items))
	for _, it := range items {
		m[it.ItemID] = it
	}
	return &ShopCatalog{byID: m}
}

// All returns every item in the catalog, for listing endpoints.
func (c *ShopCatalog) All() []ShopItem {
	items := make([]ShopItem, 0, len(c.byID))
	for _, it := range c.byID {
		items = append(items, it)
	}
	return items
}

// Price returns itemID's price, if it is sold.
func (c *ShopCatalog) Price(itemID string) (int, bool) {
	item, ok := c.byID[itemID]
	if !ok {
		return 0, false
	}
	return item.Price, true
}

//go:embed bundled/shop.json
var bundledShop embed.FS

// LoadBundledShopCatalog loads the shop catalog shipped inside the binary.
func LoadBundledShopCatalog() (*ShopCatalog, error) {
	data, err := bundledShop.ReadFile("bundled/shop.json")
	if err != nil {
		return nil, err
	}
	var items []ShopItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return NewShopCatalog(items), nil
}
