package cart

import (
	"github.com/shopspring/decimal"

	"github.com/oakrise/shopcart/internal/domain/coupon"
)

// MinChargeable is the smallest total the payment gateway will accept; the
// computed total is floored here after discounting.
var MinChargeable = decimal.NewFromInt(1)

// Price returns the effective price of a single line: the base product price
// plus each selected variant's price. An unpriceable line (missing product)
// prices at zero.
func Price(l Line) decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	price := l.Product.Price
	if l.Color != nil {
		price = price.Add(l.Color.Price)
	}
	if l.Size != nil {
		price = price.Add(l.Size.Price)
	}
	return price
}

// Subtotal sums Price over all lines. The sum is order-independent. Lines
// whose product no longer resolves contribute zero and are reported back by
// item id so the caller can surface them for cleanup instead of failing the
// whole computation.
func Subtotal(lines []Line) (sum decimal.Decimal, unpriceable []string) {
	sum = decimal.Zero
	for _, l := range lines {
		if l.Product == nil {
			unpriceable = append(unpriceable, l.ItemID)
			continue
		}
		sum = sum.Add(Price(l))
	}
	return sum, unpriceable
}

// Total computes the chargeable cart total: subtotal, minus the attached
// coupon's discount under the coupon package's rules, floored at
// MinChargeable last. c may be nil when no coupon is attached.
func Total(lines []Line, c *coupon.Coupon) decimal.Decimal {
	subtotal, _ := Subtotal(lines)
	total := subtotal
	if c != nil {
		total = coupon.Apply(c, subtotal)
	}
	if total.LessThan(MinChargeable) {
		return MinChargeable
	}
	return total
}
