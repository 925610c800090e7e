package world

// Product is a catalog entry. Popularity is mutated only by the popularity
// package (C4); everything else about a Product is fixed at startup.
type Product struct {
	ID         int
	Name       string
	Popularity int
}

// RecommendedZone classifies a popularity value into a placement zone.
// Thresholds come from the original hotWarmCold.cpp classifier.
func RecommendedZone(popularity int) Zone {
	switch {
	case popularity >= 10:
		return ZoneHot
	case popularity >= 5:
		return ZoneWarm
	default:
		return ZoneCold
	}
}

// catalogEntry is one row of the canonical 30-product catalog.
type catalogEntry struct {
	id   int
	name string
}

// catalog is the canonical product list (IDs 1-30), ported verbatim from
// the original warehouse simulator's initProducts().
var catalog = []catalogEntry{
	{1, "T-shirts"}, {2, "Jeans"}, {3, "Jackets"}, {4, "Shoes"}, {5, "Accessories"},
	{6, "Soda"}, {7, "Juice"}, {8, "Energy Drinks"},
	{9, "Skin Care"}, {10, "Makeup"}, {11, "Perfume"}, {12, "Hair Care"},
	{13, "Mobile Phones"}, {14, "Laptops"}, {15, "Headphones"}, {16, "Game Consoles"}, {17, "Cameras"},
	{18, "Books"}, {19, "Magazines"}, {20, "Games"},
	{21, "Kitchen Utensils"}, {22, "Textiles"}, {23, "Furniture"}, {24, "Lighting"}, {25, "Decoration"},
	{26, "Training Equipment"}, {27, "Sports Clothing"}, {28, "Outdoor Equipment"},
	{29, "Children's Toys"}, {30, "Board Games"},
}

func newCatalog() []*Product {
	products := make([]*Product, len(catalog))
	for i, c := range catalog {
		products[i] = &Product{ID: c.id, Name: c.name, Popularity: 0}
	}
	return products
}
