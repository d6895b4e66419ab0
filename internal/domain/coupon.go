package domain

var coupons = []Coupon{
	{Code: "SAVE20NOW", Discount: 0.2},
	{Code: "DISCOUNT50OFF", Discount: 0.5},
}

var discountCodes = map[string]float64{
	"SAVE10": 0.1,
	"SAVE20": 0.2,
}

// GetCoupons returns a copy of the published coupon set.
func GetCoupons() []Coupon {
	out := make([]Coupon, len(coupons))
	copy(out, coupons)
	return out
}

// CalculateDiscount applies a discount code to price. Unknown codes leave
// the price unchanged.
func CalculateDiscount(price, code any) Outcome[float64] {
	p, ok := asNumber(price)
	if !ok || p <= 0 {
		return Fail[float64](MsgInvalidPrice)
	}
	c, ok := code.(string)
	if !ok {
		return Fail[float64](MsgInvalidDiscountCode)
	}

	discount := discountCodes[c]
	return Ok(p - p*discount)
}
