package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/oakrise/shopcart/internal/domain/catalog"
	"github.com/oakrise/shopcart/internal/domain/coupon"
)

func testProduct(id string, price string) *catalog.Product {
	return &catalog.Product{
		ID:    id,
		Name:  "Product " + id,
		Price: decimal.RequireFromString(price),
	}
}

func testVariant(kind catalog.VariantKind, name, price string) *catalog.Variant {
	return &catalog.Variant{
		ID:    string(kind) + "-" + name,
		Kind:  kind,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func testCoupon(discount, minimum string) *coupon.Coupon {
	return &coupon.Coupon{
		Code:          "TEST",
		Discount:      decimal.RequireFromString(discount),
		MinimumAmount: decimal.RequireFromString(minimum),
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{
			name: "product only",
			line: Line{Product: testProduct("p1", "500.00")},
			want: "500.00",
		},
		{
			name: "product with size",
			line: Line{
				Product: testProduct("p1", "500.00"),
				Size:    testVariant(catalog.VariantSize, "XL", "100.00"),
			},
			want: "600.00",
		},
		{
			name: "product with color and size",
			line: Line{
				Product: testProduct("p1", "500.00"),
				Color:   testVariant(catalog.VariantColor, "navy", "50.00"),
				Size:    testVariant(catalog.VariantSize, "L", "50.00"),
			},
			want: "600.00",
		},
		{
			name: "missing product prices at zero",
			line: Line{
				ItemID: "orphan",
				Size:   testVariant(catalog.VariantSize, "M", "100.00"),
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Price(tt.line).Equal(decimal.RequireFromString(tt.want)),
				"got %s", Price(tt.line))
		})
	}
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{ItemID: "i1", Product: testProduct("p1", "500.00")},
		{ItemID: "i2", Product: testProduct("p2", "250.00"), Size: testVariant(catalog.VariantSize, "L", "50.00")},
		{ItemID: "i3"}, // product deleted after adding
	}

	sum, unpriceable := Subtotal(lines)

	assert.True(t, sum.Equal(decimal.RequireFromString("800.00")), "got %s", sum)
	assert.Equal(t, []string{"i3"}, unpriceable)
}

func TestSubtotal_OrderIndependent(t *testing.T) {
	a := Line{ItemID: "a", Product: testProduct("p1", "123.45")}
	b := Line{ItemID: "b", Product: testProduct("p2", "67.89")}
	c := Line{ItemID: "c", Product: testProduct("p3", "0.01")}

	s1, _ := Subtotal([]Line{a, b, c})
	s2, _ := Subtotal([]Line{c, a, b})

	assert.True(t, s1.Equal(s2))
}

func TestSubtotal_Empty(t *testing.T) {
	sum, unpriceable := Subtotal(nil)

	assert.True(t, sum.IsZero())
	assert.Empty(t, unpriceable)
}

func TestTotal(t *testing.T) {
	standard := []Line{
		{ItemID: "i1", Product: testProduct("p1", "500.00")},
		{ItemID: "i2", Product: testProduct("p2", "100.00")},
	}

	tests := []struct {
		name   string
		lines  []Line
		coupon *coupon.Coupon
		want   string
	}{
		{
			name:  "no coupon",
			lines: standard,
			want:  "600.00",
		},
		{
			name:   "coupon above minimum",
			lines:  standard,
			coupon: testCoupon("200.00", "400.00"),
			want:   "400.00",
		},
		{
			name: "subtotal dropped below minimum after attachment",
			// 600 < 1000, discount still applies since it stays positive.
			lines:  standard,
			coupon: testCoupon("200.00", "1000.00"),
			want:   "400.00",
		},
		{
			name:   "negative result below minimum floors at minimum charge",
			lines:  standard,
			coupon: testCoupon("800.00", "1000.00"),
			want:   "1.00",
		},
		{
			name:   "full discount floors at minimum charge",
			lines:  []Line{{ItemID: "i1", Product: testProduct("p1", "100.00")}},
			coupon: testCoupon("100.00", "0"),
			want:   "1.00",
		},
		{
			name: "empty cart charges the minimum",
			want: "1.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(tt.lines, tt.coupon)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
