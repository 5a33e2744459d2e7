package units

import (
	"strings"
	"sync"
)

// Dimension is the physical category a unit belongs to.
type Dimension string

const (
	Weight Dimension = "weight"
	Volume Dimension = "volume"
	Length Dimension = "length"
	Count  Dimension = "count"
)

const DefaultCacheSize = 1024

var dimensions = map[string]Dimension{
	"mg": Weight, "g": Weight, "kg": Weight, "tonne": Weight,
	"lbs": Weight, "lb": Weight, "oz": Weight, "ounce": Weight,

	"ml": Volume, "l": Volume, "liter": Volume, "litre": Volume,
	"gallon": Volume, "pint": Volume, "cc": Volume,

	"mm": Length, "cm": Length, "m": Length, "km": Length,
	"inch": Length, "foot": Length, "yard": Length, "mile": Length,

	"piece": Count, "pieces": Count, "unit": Count, "units": Count,
	"dozen": Count, "count": Count,
}

// Normalize lower-cases and trims a unit string.
func Normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Classify maps a unit to its dimension. The input is normalized first.
func Classify(unit string) (Dimension, bool) {
	d, ok := dimensions[Normalize(unit)]
	return d, ok
}

// Normalizer memoizes Normalize for a single run. The cache is bounded: once it
// holds maxSize entries it is cleared before the next insert.
type Normalizer struct {
	mu      sync.RWMutex
	cache   map[string]string
	maxSize int
}

func NewNormalizer(maxSize int) *Normalizer {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Normalizer{
		cache:   make(map[string]string, maxSize),
		maxSize: maxSize,
	}
}

func (n *Normalizer) Normalize(unit string) string {
	n.mu.RLock()
	v, ok := n.cache[unit]
	n.mu.RUnlock()
	if ok {
		return v
	}

	v = Normalize(unit)

	n.mu.Lock()
	if len(n.cache) >= n.maxSize {
		n.cache = make(map[string]string, n.maxSize)
	}
	n.cache[unit] = v
	n.mu.Unlock()
	return v
}

func (n *Normalizer) Classify(unit string) (Dimension, bool) {
	d, ok := dimensions[n.Normalize(unit)]
	return d, ok
}

// Len reports the number of cached entries.
func (n *Normalizer) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cache)
}
