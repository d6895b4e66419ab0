package domain

// IsPriceInRange is inclusive at both bounds.
func IsPriceInRange(price, min, max float64) bool {
	return price >= min && price <= max
}
