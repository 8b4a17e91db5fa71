package service

import (
	"context"
	"strings"
	"time"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultSubscriptionDiscountPercent = 15
	defaultBoxesPerWeek                = 2
	defaultMaxDurationWeeks            = 52
	daysPerWeek                        = 7
)

var defaultDeliveryDays = [2]time.Weekday{time.Tuesday, time.Friday}

// SubscriptionService 每周盲盒订阅服务
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	boxTypeRepo      repository.BoxTypeRepository
	userRepo         repository.UserRepository
	orderService     *OrderService
	discountPercent  decimal.Decimal
	boxesPerWeek     int
	maxWeeks         int
	deliveryDays     [2]time.Weekday
	now              func() time.Time
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	boxTypeRepo repository.BoxTypeRepository,
	userRepo repository.UserRepository,
	orderService *OrderService,
	cfg config.SubscriptionConfig,
) *SubscriptionService {
	discount := decimal.NewFromFloat(cfg.DiscountPercent)
	if cfg.DiscountPercent <= 0 {
		discount = decimal.NewFromInt(defaultSubscriptionDiscountPercent)
	}
	boxes := cfg.BoxesPerWeek
	if boxes <= 0 {
		boxes = defaultBoxesPerWeek
	}
	maxWeeks := cfg.MaxDurationWeeks
	if maxWeeks <= 0 {
		maxWeeks = defaultMaxDurationWeeks
	}
	days := defaultDeliveryDays
	if parsed, ok := parseDeliveryDays(cfg.DefaultDeliveryDays); ok {
		days = parsed
	}
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		boxTypeRepo:      boxTypeRepo,
		userRepo:         userRepo,
		orderService:     orderService,
		discountPercent:  discount,
		boxesPerWeek:     boxes,
		maxWeeks:         maxWeeks,
		deliveryDays:     days,
		now:              time.Now,
	}
}

// CreateSubscriptionInput 创建订阅输入
type CreateSubscriptionInput struct {
	UserID         uint
	BoxTypeID      uint
	StartDate      time.Time
	DurationWeeks  int
	DeliveryDays   []time.Weekday
	DeliveryMethod string
	PaymentMethod  string
	RecipientName  string
	Phone          string
	Address        string
	Notes          string
}

// SubscriptionQuote 订阅报价
type SubscriptionQuote struct {
	BoxTypeID        uint         `json:"box_type_id"`
	StartDate        time.Time    `json:"start_date"`
	EndDate          time.Time    `json:"end_date"`
	DurationWeeks    int          `json:"duration_weeks"`
	BoxesPerWeek     int          `json:"boxes_per_week"`
	TotalBoxes       int          `json:"total_boxes"`
	NaiveWeeklyPrice models.Money `json:"naive_weekly_price"`
	WeeklyPrice      models.Money `json:"weekly_price"`
	PerBoxPrice      models.Money `json:"per_box_price"`
	TotalPrice       models.Money `json:"total_price"`
	SavingsPerWeek   models.Money `json:"savings_per_week"`
}

// SubscriptionResult 订阅及其配套订单
type SubscriptionResult struct {
	Subscription *models.WeeklyBlindBoxSubscription `json:"subscription"`
	Order        *models.Order                      `json:"order"`
}

// Quote 订阅报价试算
func (s *SubscriptionService) Quote(boxTypeID uint, startDate time.Time, weeks int) (*SubscriptionQuote, error) {
	if err := s.checkDuration(weeks); err != nil {
		return nil, err
	}
	start, err := s.normalizeStart(startDate)
	if err != nil {
		return nil, err
	}
	boxType, err := s.boxTypeRepo.GetActiveByID(boxTypeID)
	if err != nil {
		return nil, err
	}
	if boxType == nil {
		return nil, ErrBoxTypeNotFound
	}
	quote := s.quote(boxType.Price.Decimal, start, weeks)
	quote.BoxTypeID = boxType.ID
	return &quote, nil
}

// Create 创建订阅：订阅、配送计划与配套订单在同一事务内写入
func (s *SubscriptionService) Create(ctx context.Context, input CreateSubscriptionInput) (*SubscriptionResult, error) {
	if err := s.checkDuration(input.DurationWeeks); err != nil {
		return nil, err
	}
	days, err := s.resolveDeliveryDays(input.DeliveryDays)
	if err != nil {
		return nil, err
	}
	start, err := s.normalizeStart(input.StartDate)
	if err != nil {
		return nil, err
	}
	input.DeliveryMethod = strings.TrimSpace(input.DeliveryMethod)
	if input.DeliveryMethod == "" {
		input.DeliveryMethod = constants.DeliveryMethodStandard
	}
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	if input.PaymentMethod == "" {
		input.PaymentMethod = constants.PaymentMethodCOD
	}
	if err := validateOrderMethods(input.DeliveryMethod, input.PaymentMethod); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCustomerNotFound
	}
	recipient := strings.TrimSpace(input.RecipientName)
	if recipient == "" {
		recipient = user.DisplayName
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		phone = user.Phone
	}

	var subscription *models.WeeklyBlindBoxSubscription
	var order *models.Order
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		boxType, err := s.boxTypeRepo.WithTx(tx).GetActiveByID(input.BoxTypeID)
		if err != nil {
			return err
		}
		if boxType == nil {
			return ErrBoxTypeNotFound
		}
		subscriptionRepo := s.subscriptionRepo.WithTx(tx)
		_, active, err := subscriptionRepo.List(repository.SubscriptionListFilter{
			UserID:    input.UserID,
			BoxTypeID: boxType.ID,
			Status:    constants.SubscriptionStatusActive,
			Page:      1,
			PageSize:  1,
		})
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrSubscriptionExists
		}

		quote := s.quote(boxType.Price.Decimal, start, input.DurationWeeks)
		subscription = &models.WeeklyBlindBoxSubscription{
			UserID:         input.UserID,
			BoxTypeID:      boxType.ID,
			StartDate:      quote.StartDate,
			EndDate:        quote.EndDate,
			DurationWeeks:  input.DurationWeeks,
			WeeklyPrice:    quote.WeeklyPrice,
			TotalPrice:     quote.TotalPrice,
			PerBoxPrice:    quote.PerBoxPrice,
			SavingsPerWeek: quote.SavingsPerWeek,
			DeliveryDay1:   int(days[0]),
			DeliveryDay2:   int(days[1]),
			DeliveryMethod: input.DeliveryMethod,
			PaymentMethod:  input.PaymentMethod,
			RecipientName:  recipient,
			Phone:          phone,
			Address:        strings.TrimSpace(input.Address),
			Notes:          strings.TrimSpace(input.Notes),
			Status:         constants.SubscriptionStatusActive,
		}
		subscription.StampCreate(input.UserID)
		if err := subscriptionRepo.Create(subscription); err != nil {
			return err
		}
		schedules := BuildWeeklySchedules(subscription.ID, start, 1, input.DurationWeeks, days)
		for i := range schedules {
			schedules[i].StampCreate(input.UserID)
		}
		if err := subscriptionRepo.CreateSchedules(schedules); err != nil {
			return err
		}

		order, err = s.placeCompanionOrder(tx, subscription, boxType.ID, input.DurationWeeks, quote.TotalPrice.Decimal, user.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("subscription_created",
		"subscription_id", subscription.ID,
		"user_id", input.UserID,
		"box_type_id", input.BoxTypeID,
		"weeks", input.DurationWeeks,
		"order_id", order.ID,
	)
	s.orderService.NotifyOrderPlaced(ctx, order)
	return s.result(subscription.ID, order)
}

// Renew 续订：顺延结束日期、追加配送计划并生成增量配套订单
func (s *SubscriptionService) Renew(ctx context.Context, userID, subscriptionID uint, additionalWeeks int) (*SubscriptionResult, error) {
	if err := s.checkDuration(additionalWeeks); err != nil {
		return nil, err
	}
	var order *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		subscriptionRepo := s.subscriptionRepo.WithTx(tx)
		subscription, err := s.ownedSubscription(subscriptionRepo, userID, subscriptionID)
		if err != nil {
			return err
		}
		if subscription.Status != constants.SubscriptionStatusActive {
			return ErrSubscriptionNotActive
		}
		lastWeek, err := subscriptionRepo.MaxWeekNumber(subscription.ID)
		if err != nil {
			return err
		}

		nextStart := dateOnly(subscription.EndDate).AddDate(0, 0, 1)
		increment := subscription.WeeklyPrice.Decimal.Mul(decimal.NewFromInt(int64(additionalWeeks)))
		subscription.EndDate = subscription.EndDate.AddDate(0, 0, additionalWeeks*daysPerWeek)
		subscription.DurationWeeks += additionalWeeks
		subscription.TotalPrice = models.NewMoneyFromDecimal(subscription.TotalPrice.Decimal.Add(increment))
		subscription.StampUpdate(userID)
		if err := subscriptionRepo.Update(subscription); err != nil {
			return err
		}

		days := [2]time.Weekday{time.Weekday(subscription.DeliveryDay1), time.Weekday(subscription.DeliveryDay2)}
		schedules := BuildWeeklySchedules(subscription.ID, nextStart, lastWeek+1, additionalWeeks, days)
		for i := range schedules {
			schedules[i].StampCreate(userID)
		}
		if err := subscriptionRepo.CreateSchedules(schedules); err != nil {
			return err
		}

		email := ""
		if user, err := s.userRepo.WithTx(tx).GetByID(userID); err == nil && user != nil {
			email = user.Email
		}
		order, err = s.placeCompanionOrder(tx, subscription, subscription.BoxTypeID, additionalWeeks, increment, email)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("subscription_renewed",
		"subscription_id", subscriptionID,
		"user_id", userID,
		"additional_weeks", additionalWeeks,
		"order_id", order.ID,
	)
	s.orderService.NotifyOrderPlaced(ctx, order)
	return s.result(subscriptionID, order)
}

// Get 获取用户订阅详情
func (s *SubscriptionService) Get(userID, subscriptionID uint) (*models.WeeklyBlindBoxSubscription, error) {
	return s.ownedSubscription(s.subscriptionRepo, userID, subscriptionID)
}

// ListByUser 用户订阅列表
func (s *SubscriptionService) ListByUser(userID uint, page, pageSize int) ([]models.WeeklyBlindBoxSubscription, int64, error) {
	return s.subscriptionRepo.List(repository.SubscriptionListFilter{UserID: userID, Page: page, PageSize: pageSize})
}

// ListAdmin 管理端订阅列表
func (s *SubscriptionService) ListAdmin(filter repository.SubscriptionListFilter) ([]models.WeeklyBlindBoxSubscription, int64, error) {
	return s.subscriptionRepo.List(filter)
}

// Cancel 取消订阅，已生成的配送计划保留
func (s *SubscriptionService) Cancel(userID, subscriptionID uint) (*models.WeeklyBlindBoxSubscription, error) {
	subscription, err := s.ownedSubscription(s.subscriptionRepo, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		return nil, ErrSubscriptionNotActive
	}
	subscription.Status = constants.SubscriptionStatusCancelled
	subscription.StampUpdate(userID)
	if err := s.subscriptionRepo.Update(subscription); err != nil {
		return nil, err
	}
	logger.Infow("subscription_cancelled", "subscription_id", subscriptionID, "user_id", userID)
	return subscription, nil
}

// SetDeliveryPaused 暂停或恢复某周的某次配送
func (s *SubscriptionService) SetDeliveryPaused(userID, subscriptionID, scheduleID uint, slot int, paused bool) (*models.WeeklyDeliverySchedule, error) {
	subscription, err := s.ownedSubscription(s.subscriptionRepo, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.Status != constants.SubscriptionStatusActive {
		return nil, ErrSubscriptionNotActive
	}
	schedule, err := s.subscriptionRepo.GetSchedule(subscriptionID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	switch slot {
	case 1:
		if schedule.Delivery1Delivered {
			return nil, ErrDeliveryAlreadyDone
		}
		schedule.Delivery1Paused = paused
	case 2:
		if schedule.Delivery2Delivered {
			return nil, ErrDeliveryAlreadyDone
		}
		schedule.Delivery2Paused = paused
	default:
		return nil, ErrInvalidDeliverySlot
	}
	schedule.StampUpdate(userID)
	if err := s.subscriptionRepo.UpdateSchedule(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// MarkDelivered 管理端标记某次配送已送达
func (s *SubscriptionService) MarkDelivered(subscriptionID, scheduleID uint, slot int, actorID uint) (*models.WeeklyDeliverySchedule, error) {
	schedule, err := s.subscriptionRepo.GetSchedule(subscriptionID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	switch slot {
	case 1:
		schedule.Delivery1Delivered = true
		schedule.Delivery1Paused = false
	case 2:
		schedule.Delivery2Delivered = true
		schedule.Delivery2Paused = false
	default:
		return nil, ErrInvalidDeliverySlot
	}
	schedule.StampUpdate(actorID)
	if err := s.subscriptionRepo.UpdateSchedule(schedule); err != nil {
		return nil, err
	}
	logger.Infow("subscription_delivery_marked",
		"subscription_id", subscriptionID,
		"schedule_id", scheduleID,
		"slot", slot,
		"actor_id", actorID,
	)
	return schedule, nil
}

func (s *SubscriptionService) placeCompanionOrder(tx *gorm.DB, subscription *models.WeeklyBlindBoxSubscription, boxTypeID uint, weeks int, price decimal.Decimal, email string) (*models.Order, error) {
	subscriptionID := subscription.ID
	return s.orderService.PlaceOrderTx(tx, PlaceOrderInput{
		UserID:         subscription.UserID,
		Items:          []PlaceOrderItem{{BoxTypeID: boxTypeID, Quantity: s.boxesPerWeek * weeks}},
		DeliveryMethod: subscription.DeliveryMethod,
		PaymentMethod:  subscription.PaymentMethod,
		RecipientName:  subscription.RecipientName,
		Phone:          subscription.Phone,
		Email:          email,
		Address:        subscription.Address,
		Notes:          subscription.Notes,
		PriceOverride:  &price,
		SubscriptionID: &subscriptionID,
	})
}

func (s *SubscriptionService) result(subscriptionID uint, order *models.Order) (*SubscriptionResult, error) {
	subscription, err := s.subscriptionRepo.GetByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}
	return &SubscriptionResult{Subscription: subscription, Order: order}, nil
}

func (s *SubscriptionService) ownedSubscription(repo repository.SubscriptionRepository, userID, subscriptionID uint) (*models.WeeklyBlindBoxSubscription, error) {
	subscription, err := repo.GetByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}
	if subscription.UserID != userID {
		return nil, ErrSubscriptionForbidden
	}
	return subscription, nil
}

// quote 周价 = 每周盒数 × 单价 × (1 - 折扣%)
func (s *SubscriptionService) quote(price decimal.Decimal, start time.Time, weeks int) SubscriptionQuote {
	boxes := decimal.NewFromInt(int64(s.boxesPerWeek))
	naiveWeekly := price.Mul(boxes)
	weekly := naiveWeekly.Mul(hundred.Sub(s.discountPercent)).Div(hundred)
	total := weekly.Mul(decimal.NewFromInt(int64(weeks)))
	return SubscriptionQuote{
		StartDate:        start,
		EndDate:          SubscriptionEndDate(start, weeks),
		DurationWeeks:    weeks,
		BoxesPerWeek:     s.boxesPerWeek,
		TotalBoxes:       s.boxesPerWeek * weeks,
		NaiveWeeklyPrice: models.NewMoneyFromDecimal(naiveWeekly),
		WeeklyPrice:      models.NewMoneyFromDecimal(weekly),
		PerBoxPrice:      models.NewMoneyFromDecimal(weekly.Div(boxes)),
		TotalPrice:       models.NewMoneyFromDecimal(total),
		SavingsPerWeek:   models.NewMoneyFromDecimal(naiveWeekly.Sub(weekly)),
	}
}

func (s *SubscriptionService) checkDuration(weeks int) error {
	if weeks <= 0 || weeks > s.maxWeeks {
		return ErrInvalidDuration
	}
	return nil
}

// normalizeStart 开始日期不得早于今天，并顺延到下一个周一（周一保持不变）
func (s *SubscriptionService) normalizeStart(raw time.Time) (time.Time, error) {
	today := dateOnly(s.now())
	if raw.IsZero() {
		raw = today
	}
	day := dateOnly(raw.In(today.Location()))
	if day.Before(today) {
		return time.Time{}, ErrSubscriptionStartInPast
	}
	return NextMonday(day), nil
}

func (s *SubscriptionService) resolveDeliveryDays(days []time.Weekday) ([2]time.Weekday, error) {
	if len(days) == 0 {
		return s.deliveryDays, nil
	}
	if len(days) != 2 || days[0] == days[1] {
		return [2]time.Weekday{}, ErrInvalidDeliveryDays
	}
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return [2]time.Weekday{}, ErrInvalidDeliveryDays
		}
	}
	return orderedDeliveryDays(days[0], days[1]), nil
}

// NextMonday 将日期顺延到周一（当天为周一则不变），结果为当天零点
func NextMonday(t time.Time) time.Time {
	day := dateOnly(t)
	offset := (int(time.Monday) - int(day.Weekday()) + daysPerWeek) % daysPerWeek
	return day.AddDate(0, 0, offset)
}

// SubscriptionEndDate 结束日期 = 开始日期 + 周数×7 - 1 天
func SubscriptionEndDate(start time.Time, weeks int) time.Time {
	return dateOnly(start).AddDate(0, 0, weeks*daysPerWeek-1)
}

// BuildWeeklySchedules 从 weekStart（周一）起生成连续周的配送计划
func BuildWeeklySchedules(subscriptionID uint, weekStart time.Time, firstWeek, weeks int, days [2]time.Weekday) []models.WeeklyDeliverySchedule {
	schedules := make([]models.WeeklyDeliverySchedule, 0, weeks)
	monday := NextMonday(weekStart)
	for i := 0; i < weeks; i++ {
		start := monday.AddDate(0, 0, i*daysPerWeek)
		schedules = append(schedules, models.WeeklyDeliverySchedule{
			SubscriptionID: subscriptionID,
			WeekNumber:     firstWeek + i,
			WeekStart:      start,
			WeekEnd:        start.AddDate(0, 0, daysPerWeek-1),
			Delivery1Date:  weekdayInWeek(start, days[0]),
			Delivery2Date:  weekdayInWeek(start, days[1]),
		})
	}
	return schedules
}

// weekdayInWeek 周一向后滚动到目标星期（周日视为本周最后一天）
func weekdayInWeek(monday time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(time.Monday) + daysPerWeek) % daysPerWeek
	return monday.AddDate(0, 0, offset)
}

func orderedDeliveryDays(a, b time.Weekday) [2]time.Weekday {
	rank := func(d time.Weekday) int { return (int(d) - int(time.Monday) + daysPerWeek) % daysPerWeek }
	if rank(b) < rank(a) {
		return [2]time.Weekday{b, a}
	}
	return [2]time.Weekday{a, b}
}

func parseDeliveryDays(names []string) ([2]time.Weekday, bool) {
	if len(names) != 2 {
		return [2]time.Weekday{}, false
	}
	first, ok1 := ParseWeekday(names[0])
	second, ok2 := ParseWeekday(names[1])
	if !ok1 || !ok2 || first == second {
		return [2]time.Weekday{}, false
	}
	return orderedDeliveryDays(first, second), true
}

// ParseWeekday 解析英文星期名（大小写不敏感，支持三字母缩写）
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, true
		}
	}
	return 0, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
