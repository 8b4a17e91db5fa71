package repository

import (
	"testing"
	"time"

	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"
)

func TestSubscriptionRepositorySchedules(t *testing.T) {
	db := setupRepositoryTestDB(t, "subscription_repo")
	repo := NewSubscriptionRepository(db)
	user := createRepositoryTestUser(t, db, "sub_repo@example.com")
	box := createRepositoryTestBoxType(t, db, "weekly", 100000)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sub := &models.WeeklyBlindBoxSubscription{
		UserID:        user.ID,
		BoxTypeID:     box.ID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 13),
		DurationWeeks: 2,
		Status:        constants.SubscriptionStatusActive,
	}
	if err := repo.Create(sub); err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	maxWeek, err := repo.MaxWeekNumber(sub.ID)
	if err != nil || maxWeek != 0 {
		t.Fatalf("empty schedule max week want 0 got %d err=%v", maxWeek, err)
	}

	schedules := []models.WeeklyDeliverySchedule{
		{SubscriptionID: sub.ID, WeekNumber: 2, WeekStart: start.AddDate(0, 0, 7), WeekEnd: start.AddDate(0, 0, 13), Delivery1Date: start.AddDate(0, 0, 8), Delivery2Date: start.AddDate(0, 0, 11)},
		{SubscriptionID: sub.ID, WeekNumber: 1, WeekStart: start, WeekEnd: start.AddDate(0, 0, 6), Delivery1Date: start.AddDate(0, 0, 1), Delivery2Date: start.AddDate(0, 0, 4)},
	}
	if err := repo.CreateSchedules(schedules); err != nil {
		t.Fatalf("create schedules failed: %v", err)
	}

	maxWeek, err = repo.MaxWeekNumber(sub.ID)
	if err != nil || maxWeek != 2 {
		t.Fatalf("max week want 2 got %d err=%v", maxWeek, err)
	}

	loaded, err := repo.GetByIDAndUser(sub.ID, user.ID)
	if err != nil || loaded == nil {
		t.Fatalf("load subscription failed: %v", err)
	}
	if len(loaded.Schedules) != 2 || loaded.Schedules[0].WeekNumber != 1 {
		t.Fatalf("schedules should be ordered by week, got %+v", loaded.Schedules)
	}

	other, err := repo.GetByIDAndUser(sub.ID, user.ID+100)
	if err != nil || other != nil {
		t.Fatalf("foreign user should not see subscription, got %+v err=%v", other, err)
	}
}

func TestReviewRepositoryAverageRating(t *testing.T) {
	db := setupRepositoryTestDB(t, "review_repo")
	repo := NewReviewRepository(db)
	user := createRepositoryTestUser(t, db, "review_repo@example.com")

	for i, rating := range []int{5, 4} {
		if err := repo.Create(&models.Review{UserID: user.ID, OrderID: uint(i + 1), BoxTypeID: 7, Rating: rating}); err != nil {
			t.Fatalf("create review failed: %v", err)
		}
	}
	avg, total, err := repo.AverageRating(7)
	if err != nil {
		t.Fatalf("average rating failed: %v", err)
	}
	if total != 2 || avg != 4.5 {
		t.Fatalf("average want 4.5/2 got %v/%d", avg, total)
	}

	rows, _, err := repo.List(ReviewListFilter{BoxTypeID: 7, Page: 1, PageSize: 10})
	if err != nil || len(rows) != 2 || rows[0].User == nil {
		t.Fatalf("list should preload users, rows=%+v err=%v", rows, err)
	}
}
