package service

import (
	"testing"

	"github.com/boxmart-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculatePriceWithoutDiscount(t *testing.T) {
	result := CalculatePrice([]PriceLine{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100000)},
	}, nil)
	if !result.TotalPrice.Equal(decimal.NewFromInt(200000)) || !result.FinalPrice.Equal(decimal.NewFromInt(200000)) {
		t.Fatalf("want 200000/200000 got %s/%s", result.TotalPrice, result.FinalPrice)
	}
	if !result.DiscountAmount.IsZero() {
		t.Fatalf("discount amount should be zero, got %s", result.DiscountAmount)
	}
}

func TestCalculatePricePercentageDiscount(t *testing.T) {
	discount := &models.Discount{Value: models.NewMoneyFromInt(10), IsPercentage: true}
	result := CalculatePrice([]PriceLine{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100000)},
	}, discount)
	if !result.FinalPrice.Equal(decimal.NewFromInt(180000)) {
		t.Fatalf("10%% off 200000 want 180000 got %s", result.FinalPrice)
	}
	if !result.DiscountAmount.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("discount amount want 20000 got %s", result.DiscountAmount)
	}
}

func TestCalculatePriceFixedDiscountNeverNegative(t *testing.T) {
	discount := &models.Discount{Value: models.NewMoneyFromInt(500000), IsPercentage: false}
	result := CalculatePrice([]PriceLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(150000)},
		{Quantity: 3, UnitPrice: decimal.NewFromInt(50000)},
	}, discount)
	if !result.TotalPrice.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("total want 300000 got %s", result.TotalPrice)
	}
	if !result.FinalPrice.IsZero() {
		t.Fatalf("final price must floor at zero, got %s", result.FinalPrice)
	}
}

func TestCalculatePriceEmptyLines(t *testing.T) {
	result := CalculatePrice(nil, &models.Discount{Value: models.NewMoneyFromInt(10), IsPercentage: true})
	if !result.TotalPrice.IsZero() || !result.FinalPrice.IsZero() {
		t.Fatalf("empty lines should price at zero, got %+v", result)
	}
}

func TestPriceLinesFromItems(t *testing.T) {
	lines := priceLinesFromItems([]models.OrderItem{
		{Quantity: 2, UnitPrice: models.NewMoneyFromInt(75000)},
		{Quantity: 1, UnitPrice: models.NewMoneyFromInt(25000)},
	})
	result := CalculatePrice(lines, nil)
	if !result.TotalPrice.Equal(decimal.NewFromInt(175000)) {
		t.Fatalf("total want 175000 got %s", result.TotalPrice)
	}
}
