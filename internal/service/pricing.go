package service

import (
	"github.com/boxmart-next/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceLine 计价行
type PriceLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// PriceBreakdown 计价结果
type PriceBreakdown struct {
	TotalPrice     models.Money `json:"total_price"`
	DiscountAmount models.Money `json:"discount_amount"`
	FinalPrice     models.Money `json:"final_price"`
}

// CalculatePrice 按行汇总总价并应用折扣，结果不低于 0
func CalculatePrice(lines []PriceLine, discount *models.Discount) PriceBreakdown {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	final := ApplyDiscount(total, discount)
	return PriceBreakdown{
		TotalPrice:     models.NewMoneyFromDecimal(total),
		DiscountAmount: models.NewMoneyFromDecimal(total.Sub(final)),
		FinalPrice:     models.NewMoneyFromDecimal(final),
	}
}

// ApplyDiscount 对金额应用折扣
// 百分比折扣为 total*(1-value/100)，固定折扣为 total-value，最终金额下限为 0。
func ApplyDiscount(total decimal.Decimal, discount *models.Discount) decimal.Decimal {
	if discount == nil {
		return clampZero(total)
	}
	value := discount.Value.Decimal
	var final decimal.Decimal
	if discount.IsPercentage {
		final = total.Mul(hundred.Sub(value)).Div(hundred)
	} else {
		final = total.Sub(value)
	}
	return clampZero(final)
}

// priceLinesFromItems 订单项转换为计价行
func priceLinesFromItems(items []models.OrderItem) []PriceLine {
	return lo.Map(items, func(item models.OrderItem, _ int) PriceLine {
		return PriceLine{Quantity: item.Quantity, UnitPrice: item.UnitPrice.Decimal}
	})
}

func clampZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
