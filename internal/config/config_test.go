package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestUnmarshalDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Order.MaxLineQuantity != 1000 {
		t.Fatalf("max line quantity want 1000 got %d", cfg.Order.MaxLineQuantity)
	}
	if cfg.Subscription.DiscountPercent != 15 || cfg.Subscription.BoxesPerWeek != 2 {
		t.Fatalf("unexpected subscription defaults: %+v", cfg.Subscription)
	}
	if cfg.PayOS.DescriptionMaxLength != 25 {
		t.Fatalf("payos description max length want 25 got %d", cfg.PayOS.DescriptionMaxLength)
	}
	if len(cfg.Subscription.DefaultDeliveryDays) != 2 {
		t.Fatalf("default delivery days want 2 got %v", cfg.Subscription.DefaultDeliveryDays)
	}
}

func TestUnmarshalEnvOverride(t *testing.T) {
	t.Setenv("PAYOS_CHECKSUM_KEY", "env-checksum")
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.PayOS.ChecksumKey != "env-checksum" {
		t.Fatalf("checksum key should come from env, got %q", cfg.PayOS.ChecksumKey)
	}
}

func TestValidateRejectsBadSubscriptionDiscount(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("subscription.discount_percent", 120)

	if _, err := Unmarshal(v); err == nil {
		t.Fatalf("expected validation error for discount percent >= 100")
	}
}
