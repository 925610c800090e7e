// Package popularity tracks per-product popularity and the Hot/Warm/Cold
// zone classification derived from it (C4 in the design).
package popularity

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

// DefaultDecayInterval is the default period between popularity decay
// sweeps, in simulated seconds.
const DefaultDecayInterval = 600.0

// DecayFactor is applied to every product's popularity on each decay tick.
const DecayFactor = 0.95

// Manager owns the decay clock and mutates World's product popularity and
// the recommended zone recorded on each node.
type Manager struct {
	world         *world.World
	decayInterval float64
	lastDecay     float64
}

// NewManager creates a popularity Manager over w with the given decay
// interval in seconds (DefaultDecayInterval if interval <= 0).
func NewManager(w *world.World, interval float64) *Manager {
	if interval <= 0 {
		interval = DefaultDecayInterval
	}
	return &Manager{world: w, decayInterval: interval}
}

// Reset zeros the decay clock, matching episode reset semantics.
func (m *Manager) Reset() {
	m.lastDecay = 0
}

// UpdatePopularityAndZone increments productID's popularity by one and
// recomputes its recommended zone. If the product currently has a primary
// shelf (the first shelf returned by World.FindProductOnShelf), a zone
// mismatch between the shelf's recorded zone and the new recommendation is
// logged as a diagnostic, and the shelf's zone is updated to match — the
// zone field tracks the classification of the most recently popular
// product it hosts.
func (m *Manager) UpdatePopularityAndZone(productID int) {
	p := m.world.Product(productID)
	if p == nil {
		logrus.WithField("product_id", productID).Warn("popularity: unknown product")
		return
	}

	p.Popularity++
	recommended := world.RecommendedZone(p.Popularity)

	if shelfIdx, _, found := m.world.FindProductOnShelf(productID); found {
		shelf := m.world.Node(shelfIdx)
		if shelf.Zone != recommended {
			logrus.WithFields(logrus.Fields{
				"product_id":   productID,
				"shelf":        shelf.ID,
				"current_zone": shelf.Zone.String(),
				"recommended":  recommended.String(),
			}).Debug("popularity: zone mismatch")
			shelf.Zone = recommended
		}
	}
}

// ApplyDecay runs the decay sweep at most once per configured interval.
// Each product's popularity becomes floor(0.95*old), clamped at 0. Returns
// true if a decay sweep actually ran.
func (m *Manager) ApplyDecay(now float64) bool {
	if now-m.lastDecay < m.decayInterval {
		return false
	}
	m.lastDecay = now
	for _, p := range m.world.Products {
		next := int(math.Floor(DecayFactor * float64(p.Popularity)))
		if next < 0 {
			next = 0
		}
		p.Popularity = next
	}
	return true
}
