package event

import (
	"math"
	"math/rand"

	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

// Lorry sizes, uniform among the three in §4.5.
const (
	LorrySmall  = 10
	LorryMedium = 20
	LorryBig    = 30
)

var lorrySizes = []int{LorrySmall, LorryMedium, LorryBig}

// exponentialInterval draws an inter-arrival time from Exponential(mean).
func exponentialInterval(r *rand.Rand, mean float64) float64 {
	// Inverse-CDF sampling: -mean * ln(1 - U), U uniform in [0,1).
	u := r.Float64()
	return -mean * math.Log(1-u)
}

// uniformLorrySize picks one of SMALL/MEDIUM/BIG with equal probability.
func uniformLorrySize(r *rand.Rand) int {
	return lorrySizes[r.Intn(len(lorrySizes))]
}

// uniformQuantity picks a customer order quantity uniformly in [1,5].
func uniformQuantity(r *rand.Rand) int {
	return 1 + r.Intn(5)
}

// weightedProductPick samples a product id with the given weight function
// (negative weights count as 0). While any weight is positive, products with
// weight 0 are never drawn; if every weight is 0 it returns the first
// product's id, and -1 for an empty product list.
func weightedProductPick(r *rand.Rand, products []*world.Product, weight func(*world.Product) float64) int {
	total := 0.0
	weights := make([]float64, len(products))
	for i, p := range products {
		w := weight(p)
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		if len(products) == 0 {
			return -1
		}
		return products[0].ID
	}
	target := r.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return products[i].ID
		}
	}
	return products[len(products)-1].ID
}

// deliveryWeight biases toward restocking less popular items: weight =
// max(1, 10 - popularity).
func deliveryWeight(p *world.Product) float64 {
	w := 10 - float64(p.Popularity)
	if w < 1 {
		w = 1
	}
	return w
}

// orderWeight biases toward ordering more popular items: weight =
// popularity + 1.
func orderWeight(p *world.Product) float64 {
	return float64(p.Popularity) + 1
}
