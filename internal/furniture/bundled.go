package furniture

import "embed"

//go:embed bundled/furniture.json
var bundledCatalog embed.FS

// LoadBundledCatalog loads the furniture catalog shipped inside the
// binary. cmd/server loads its furniture catalog from here at startup; no
// catalog file path is read.
func LoadBundledCatalog() (*Catalog, error) {
	data, err := bundledCatalog.ReadFile("bundled/furniture.json")
	if err != nil {
		return nil, err
	}
	return LoadCatalogJSON(data)
}
