package main

import (
	"time"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 盒子品类
	boxTypes := []models.BoxType{
		{
			Name:        "Classic Gift Box",
			Slug:        "classic-gift-box",
			Description: "Hand-picked snacks and a greeting card",
			Price:       models.NewMoneyFromInt(250000),
			IsActive:    true,
			SortOrder:   30,
		},
		{
			Name:        "Mystery Blind Box",
			Slug:        "mystery-blind-box",
			Description: "A surprise selection of seasonal ingredients",
			Price:       models.NewMoneyFromInt(180000),
			IsActive:    true,
			SortOrder:   20,
		},
		{
			Name:        "Family Meal Box",
			Slug:        "family-meal-box",
			Description: "Fresh ingredients for four servings",
			Price:       models.NewMoneyFromInt(420000),
			IsActive:    true,
			SortOrder:   10,
		},
	}
	for i := range boxTypes {
		item := boxTypes[i]
		if err := models.DB.Where("slug = ?", item.Slug).FirstOrCreate(&item).Error; err != nil {
			stdLog.Printf("Failed to seed box type %s: %v", item.Slug, err)
			continue
		}
		stdLog.Printf("Seeded box type: %s (id=%d)", item.Name, item.ID)
	}

	// 折扣码
	now := time.Now()
	discounts := []models.Discount{
		{
			Code:         "WELCOME10",
			Description:  "10% off the first order",
			Value:        models.NewMoneyFromInt(10),
			IsPercentage: true,
			IsActive:     true,
			StartDate:    now.AddDate(0, 0, -1),
			EndDate:      now.AddDate(1, 0, 0),
		},
		{
			Code:        "GIFT50K",
			Description: "50,000 off any gift box",
			Value:       models.NewMoneyFromInt(50000),
			IsActive:    true,
			StartDate:   now.AddDate(0, 0, -1),
			EndDate:     now.AddDate(0, 3, 0),
		},
	}
	for i := range discounts {
		item := discounts[i]
		if err := models.DB.Where("code = ?", item.Code).FirstOrCreate(&item).Error; err != nil {
			stdLog.Printf("Failed to seed discount %s: %v", item.Code, err)
			continue
		}
		stdLog.Printf("Seeded discount: %s (id=%d)", item.Code, item.ID)
	}

	stdLog.Printf("Seed completed")
}
