package units

// Factors relative to each dimension's base unit: gram, milliliter, millimeter, unit.
var factors = map[Dimension]map[string]float64{
	Weight: {
		"mg": 0.001, "g": 1, "kg": 1000, "tonne": 1e6,
		"lb": 453.592, "lbs": 453.592, "oz": 28.3495, "ounce": 28.3495,
	},
	Volume: {
		"ml": 1, "cc": 1, "l": 1000, "liter": 1000, "litre": 1000,
		"gallon": 3785.41, "pint": 473.176,
	},
	Length: {
		"mm": 1, "cm": 10, "m": 1000, "km": 1e6,
		"inch": 25.4, "foot": 304.8, "yard": 914.4, "mile": 1609344,
	},
	Count: {
		"piece": 1, "pieces": 1, "unit": 1, "units": 1, "dozen": 12, "count": 1,
	},
}

// Convert converts value between two units of the same dimension. It never
// fails: equal units, unknown units and cross-dimension pairs return value as is.
func Convert(value float64, from, to string) float64 {
	return convert(value, Normalize(from), Normalize(to))
}

// Convert is Convert using the normalizer's cache.
func (n *Normalizer) Convert(value float64, from, to string) float64 {
	return convert(value, n.Normalize(from), n.Normalize(to))
}

func convert(value float64, from, to string) float64 {
	if from == to {
		return value
	}
	fromDim, ok := dimensions[from]
	if !ok {
		return value
	}
	toDim, ok := dimensions[to]
	if !ok || fromDim != toDim {
		return value
	}
	return value * factor(fromDim, from) / factor(toDim, to)
}

func factor(d Dimension, unit string) float64 {
	if f, ok := factors[d][unit]; ok {
		return f
	}
	return 1
}
