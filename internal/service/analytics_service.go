package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	defaultTrendDays = 30
	unknownLabel     = "Unknown"
)

// AnalyticsService summarizes order headers. Revenue is the order subtotal.
type AnalyticsService struct {
	store repository.Store
	cache cache.AnalyticsCache
}

func NewAnalyticsService(store repository.Store, cacheImpl cache.AnalyticsCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{store: store, cache: cacheImpl}
}

// GetDailyAnalytics summarizes one business date, defaulting to the latest
// date that has orders.
func (s *AnalyticsService) GetDailyAnalytics(ctx context.Context, date *domain.Date) (*domain.DailyAnalytics, error) {
	if date == nil {
		latest, err := s.latestOrderDate(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return &domain.DailyAnalytics{Status: domain.StatusNoData}, nil
		}
		date = latest
	}

	if cached, ok, err := s.cache.GetDaily(ctx, *date); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get daily failed")
	}

	var orders []domain.DailyOrder
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		orders, err = tx.ListOrdersBetween(ctx, *date, *date)
		return err
	})
	if err != nil {
		return nil, err
	}

	analytics := summarizeOrders(*date, orders)
	if analytics.Status == domain.StatusSuccess {
		if err := s.cache.SetDaily(ctx, *date, analytics); err != nil {
			log.Warn().Err(err).Msg("analytics: cache set daily failed")
		}
	}
	return analytics, nil
}

// GetRevenueTrend returns per-day order revenue for the trailing days ending
// at the latest order date.
func (s *AnalyticsService) GetRevenueTrend(ctx context.Context, days int) ([]domain.RevenueTrendPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	points := make([]domain.RevenueTrendPoint, 0)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		latest, err := tx.LatestOrderDate(ctx)
		if err != nil || latest == nil {
			return err
		}
		orders, err := tx.ListOrdersBetween(ctx, latest.AddDays(-(days - 1)), *latest)
		if err != nil {
			return err
		}

		byDate := make(map[string]*domain.RevenueTrendPoint)
		for _, o := range orders {
			if o.Voided {
				continue
			}
			key := o.BusinessDate.String()
			p, ok := byDate[key]
			if !ok {
				p = &domain.RevenueTrendPoint{BusinessDate: o.BusinessDate}
				byDate[key] = p
			}
			p.Orders++
			p.Revenue += o.Subtotal
		}
		for _, p := range byDate {
			p.Revenue = round2(p.Revenue)
			p.AvgOrderValue = round2(p.Revenue / float64(p.Orders))
			points = append(points, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(points, func(i, j int) bool { return points[i].BusinessDate.Before(points[j].BusinessDate) })
	return points, nil
}

func (s *AnalyticsService) latestOrderDate(ctx context.Context) (*domain.Date, error) {
	var latest *domain.Date
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		latest, err = tx.LatestOrderDate(ctx)
		return err
	})
	return latest, err
}

func summarizeOrders(date domain.Date, orders []domain.DailyOrder) *domain.DailyAnalytics {
	out := &domain.DailyAnalytics{
		Status:          domain.StatusNoData,
		BusinessDate:    date,
		ByServicePeriod: make([]domain.PeriodBreakdown, 0),
		ByDiningOption:  make([]domain.OptionBreakdown, 0),
		ByServer:        make([]domain.ServerBreakdown, 0),
		ByHour:          make([]domain.HourBreakdown, 0),
	}

	periods := make(map[string]*domain.PeriodBreakdown)
	options := make(map[string]*domain.OptionBreakdown)
	servers := make(map[string]*domain.ServerBreakdown)
	hours := make(map[int]*domain.HourBreakdown)

	for _, o := range orders {
		if o.Voided {
			continue
		}
		out.TotalOrders++
		out.TotalRevenue += o.Subtotal
		out.TotalGuests += o.NumGuests
		out.TotalTips += o.Tip

		period := labelOrUnknown(o.ServicePeriod)
		if periods[period] == nil {
			periods[period] = &domain.PeriodBreakdown{Period: period}
		}
		periods[period].Orders++
		periods[period].Revenue += o.Subtotal

		option := labelOrUnknown(o.DiningOption)
		if options[option] == nil {
			options[option] = &domain.OptionBreakdown{Option: option}
		}
		options[option].Orders++
		options[option].Revenue += o.Subtotal

		server := labelOrUnknown(o.ServerName)
		if servers[server] == nil {
			servers[server] = &domain.ServerBreakdown{Server: server}
		}
		servers[server].Orders++
		servers[server].Revenue += o.Subtotal
		servers[server].Tips += o.Tip

		if o.OpenedAt != nil {
			h := o.OpenedAt.Hour()
			if hours[h] == nil {
				hours[h] = &domain.HourBreakdown{Hour: h}
			}
			hours[h].Orders++
			hours[h].Revenue += o.Subtotal
		}
	}
	if out.TotalOrders == 0 {
		return out
	}

	out.Status = domain.StatusSuccess
	out.TotalRevenue = round2(out.TotalRevenue)
	out.TotalTips = round2(out.TotalTips)
	out.AvgOrderValue = round2(out.TotalRevenue / float64(out.TotalOrders))

	for _, p := range periods {
		p.Revenue = round2(p.Revenue)
		out.ByServicePeriod = append(out.ByServicePeriod, *p)
	}
	sort.Slice(out.ByServicePeriod, func(i, j int) bool {
		return out.ByServicePeriod[i].Revenue > out.ByServicePeriod[j].Revenue
	})
	for _, o := range options {
		o.Revenue = round2(o.Revenue)
		out.ByDiningOption = append(out.ByDiningOption, *o)
	}
	sort.Slice(out.ByDiningOption, func(i, j int) bool {
		return out.ByDiningOption[i].Revenue > out.ByDiningOption[j].Revenue
	})
	for _, sv := range servers {
		sv.Revenue = round2(sv.Revenue)
		sv.Tips = round2(sv.Tips)
		out.ByServer = append(out.ByServer, *sv)
	}
	sort.Slice(out.ByServer, func(i, j int) bool { return out.ByServer[i].Revenue > out.ByServer[j].Revenue })
	for _, h := range hours {
		h.Revenue = round2(h.Revenue)
		out.ByHour = append(out.ByHour, *h)
	}
	sort.Slice(out.ByHour, func(i, j int) bool { return out.ByHour[i].Hour < out.ByHour[j].Hour })
	return out
}

func labelOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return unknownLabel
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
