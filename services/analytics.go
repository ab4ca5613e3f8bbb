package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/config"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/utils"
)

// RequestInfo carries the request metadata the tracker derives viewer details
// from, decoupled from the HTTP framework.
type RequestInfo struct {
	ForwardedFor string
	RealIP       string
	RemoteAddr   string
	UserAgent    string
}

// RequestInfoFrom extracts tracking metadata from an inbound request.
func RequestInfoFrom(c *gin.Context) RequestInfo {
	return RequestInfo{
		ForwardedFor: c.GetHeader("X-Forwarded-For"),
		RealIP:       c.GetHeader("X-Real-IP"),
		RemoteAddr:   c.Request.RemoteAddr,
		UserAgent:    c.Request.UserAgent(),
	}
}

// ClientIP resolves the viewer address. Priority: first X-Forwarded-For entry,
// then X-Real-IP, then the raw connection address, then "Unknown".
func (ri RequestInfo) ClientIP() string {
	if ri.ForwardedFor != "" {
		if first := strings.TrimSpace(strings.Split(ri.ForwardedFor, ",")[0]); first != "" {
			return first
		}
	}
	if v := strings.TrimSpace(ri.RealIP); v != "" {
		return v
	}
	if ri.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(ri.RemoteAddr); err == nil {
			return host
		}
		return ri.RemoteAddr
	}
	return "Unknown"
}

// Device and browser classification tables. Ordered, first match wins; order
// is part of the contract since user agents can carry several markers (an
// Android tablet UA contains both "android" and "tablet" and counts as Mobile).
var deviceRules = []struct {
	markers []string
	label   string
}{
	{[]string{"mobile", "android", "iphone"}, models.DeviceMobile},
	{[]string{"tablet", "ipad"}, models.DeviceTablet},
}

var browserRules = []struct {
	marker string
	label  string
}{
	{"chrome", models.BrowserChrome},
	{"firefox", models.BrowserFirefox},
	{"safari", models.BrowserSafari},
	{"edge", models.BrowserEdge},
	{"opera", models.BrowserOpera},
}

// ClassifyDevice labels a user agent as Mobile, Tablet, Desktop, or Unknown.
func ClassifyDevice(userAgent string) string {
	if userAgent == "" {
		return models.DeviceUnknown
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range deviceRules {
		for _, m := range rule.markers {
			if strings.Contains(ua, m) {
				return rule.label
			}
		}
	}
	return models.DeviceDesktop
}

// ClassifyBrowser labels a user agent by browser family.
func ClassifyBrowser(userAgent string) string {
	if userAgent == "" {
		return models.BrowserUnknown
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		if strings.Contains(ua, rule.marker) {
			return rule.label
		}
	}
	return models.BrowserOther
}

// TrendPoint is one day of the views trend, zero-filled for quiet days.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Views int64     `json:"views"`
}

// Breakdown is a count-and-percentage distribution bucket for one categorical field.
type Breakdown struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CardSummary is the per-card line of a user-level dashboard.
type CardSummary struct {
	CardID     uint       `json:"card_id"`
	CardName   string     `json:"card_name"`
	Company    string     `json:"company"`
	ViewCount  int64      `json:"view_count"`
	LastViewed *time.Time `json:"last_viewed"`
}

// Stats is the analytics bundle for one card or one user's cards.
// UniqueViewers counts distinct viewer IPs, which only approximates unique
// visitors: a shared IP undercounts, rotating IPs overcount.
type Stats struct {
	TotalCards     int64             `json:"total_cards,omitempty"`
	TotalViews     int64             `json:"total_views"`
	UniqueViewers  int64             `json:"unique_viewers"`
	ViewsToday     int64             `json:"views_today"`
	ViewsThisWeek  int64             `json:"views_this_week"`
	ViewsThisMonth int64             `json:"views_this_month"`
	ViewsTrend     []TrendPoint      `json:"views_trend"`
	TopCountries   []Breakdown       `json:"top_countries"`
	TopDevices     []Breakdown       `json:"top_devices"`
	TopBrowsers    []Breakdown       `json:"top_browsers"`
	Cards          []CardSummary     `json:"cards,omitempty"`
	RecentViews    []models.CardView `json:"recent_views,omitempty"`

	// Card-level header fields
	CardName   string     `json:"card_name,omitempty"`
	Company    string     `json:"company,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	LastViewed *time.Time `json:"last_viewed,omitempty"`
}

const (
	topCountriesLimit = 10
	recentViewsLimit  = 20
)

// AnalyticsService records card views and derives dashboard statistics from
// the view log. Statistics are recomputed from the full log on every read;
// the type boundary exists so an incremental rollup could replace the scans
// without touching callers.
type AnalyticsService struct {
	db           *gorm.DB
	now          func() time.Time
	trendDays    int
	uniqueWindow time.Duration
	geoEnabled   bool
}

// NewAnalyticsService wires the service against the given database using the
// loaded application configuration.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	cfg := config.Get()
	return &AnalyticsService{
		db:           db,
		now:          time.Now,
		trendDays:    cfg.TrendDays,
		uniqueWindow: time.Duration(cfg.UniqueWindowHours) * time.Hour,
		geoEnabled:   cfg.GeoLookupEnabled,
	}
}

// TrackCardView appends one CardView row and bumps the card's denormalized
// counter in a single transaction. A cardID that matches no card still gets a
// log row; the counter update is then a silent no-op. Failures are logged and
// swallowed so the public page render never observes them.
func (s *AnalyticsService) TrackCardView(cardID uint, info RequestInfo) {
	now := s.now()
	ip := info.ClientIP()

	view := models.CardView{
		CardID:       cardID,
		ViewedAt:     now,
		ViewerIP:     ip,
		UserAgent:    info.UserAgent,
		DeviceType:   ClassifyDevice(info.UserAgent),
		Browser:      ClassifyBrowser(info.UserAgent),
		IsUniqueView: true,
	}

	// Geo enrichment reads the caches only; a miss warms them in the
	// background so the remote lookup never delays the page render.
	if s.geoEnabled {
		if loc, ok := utils.LookupIPGeoCached(context.Background(), ip); ok {
			view.Country = loc.Country
			view.City = loc.City
			view.Region = loc.Region
		} else {
			go warmGeoCache(ip)
		}
	}

	// A repeat view from the same IP inside the window is not unique.
	// Lookup failure defaults to unique rather than losing the row.
	if s.uniqueWindow > 0 && ip != "" && ip != "Unknown" {
		var prior int64
		err := s.db.Model(&models.CardView{}).
			Where("card_id = ? AND viewer_ip = ? AND viewed_at >= ?", cardID, ip, now.Add(-s.uniqueWindow)).
			Count(&prior).Error
		if err == nil && prior > 0 {
			view.IsUniqueView = false
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.VisitingCard{}).
			Where("id = ?", cardID).
			Updates(map[string]interface{}{
				"view_count":  gorm.Expr("view_count + 1"),
				"last_viewed": now,
			}).Error
	})
	if err != nil && utils.Sugar != nil {
		utils.Sugar.Errorf("track card view failed card_id=%d err=%v", cardID, err)
	}
}

func warmGeoCache(ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := utils.LookupIPGeo(ctx, ip); err != nil && utils.Sugar != nil {
		utils.Sugar.Debugf("geo lookup failed ip=%s err=%v", ip, err)
	}
}

// CardStats computes the analytics bundle for one card. An id matching no
// card or no views yields zero-filled stats, not an error.
func (s *AnalyticsService) CardStats(cardID uint) (*Stats, error) {
	var views []models.CardView
	if err := s.db.Where("card_id = ?", cardID).Find(&views).Error; err != nil {
		return nil, fmt.Errorf("load view log for card %d: %w", cardID, err)
	}

	now := s.now()
	stats := s.buildStats(views, now)

	var card models.VisitingCard
	if err := s.db.First(&card, cardID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load card %d: %w", cardID, err)
		}
	} else {
		stats.CardName = card.FullName()
		stats.Company = card.Company
		createdAt := card.CreatedAt
		stats.CreatedAt = &createdAt
		stats.LastViewed = card.LastViewed
	}

	stats.RecentViews = latestViews(views, recentViewsLimit)
	return stats, nil
}

// UserStats computes the analytics bundle across all of a user's cards,
// including per-card summaries derived from the view log rather than the
// denormalized counters.
func (s *AnalyticsService) UserStats(userID uint) (*Stats, error) {
	var cards []models.VisitingCard
	if err := s.db.Where("user_id = ?", userID).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("load cards for user %d: %w", userID, err)
	}

	var views []models.CardView
	if len(cards) > 0 {
		cardIDs := make([]uint, 0, len(cards))
		for _, c := range cards {
			cardIDs = append(cardIDs, c.ID)
		}
		if err := s.db.Where("card_id IN ?", cardIDs).Find(&views).Error; err != nil {
			return nil, fmt.Errorf("load view log for user %d: %w", userID, err)
		}
	}

	now := s.now()
	stats := s.buildStats(views, now)
	stats.TotalCards = int64(len(cards))

	perCard := make(map[uint][]models.CardView, len(cards))
	for _, v := range views {
		perCard[v.CardID] = append(perCard[v.CardID], v)
	}

	stats.Cards = make([]CardSummary, 0, len(cards))
	for _, card := range cards {
		summary := CardSummary{
			CardID:    card.ID,
			CardName:  card.FullName(),
			Company:   card.Company,
			ViewCount: int64(len(perCard[card.ID])),
		}
		for _, v := range perCard[card.ID] {
			if summary.LastViewed == nil || v.ViewedAt.After(*summary.LastViewed) {
				t := v.ViewedAt
				summary.LastViewed = &t
			}
		}
		stats.Cards = append(stats.Cards, summary)
	}

	return stats, nil
}

// CardTrend returns the per-day view series for one card over the requested
// window. days outside [1, 365] falls back to the configured default.
func (s *AnalyticsService) CardTrend(cardID uint, days int) ([]TrendPoint, error) {
	if days < 1 || days > 365 {
		days = s.trendDays
	}

	now := s.now()
	today := StartOfDay(now)
	start := today.AddDate(0, 0, -days)

	var views []models.CardView
	if err := s.db.Where("card_id = ? AND viewed_at >= ?", cardID, start).Find(&views).Error; err != nil {
		return nil, fmt.Errorf("load view log for card %d: %w", cardID, err)
	}
	return viewsTrend(views, today, days), nil
}

// buildStats derives every date-relative figure from the single now value so
// the boundaries stay consistent within one call.
func (s *AnalyticsService) buildStats(views []models.CardView, now time.Time) *Stats {
	today := StartOfDay(now)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := today.AddDate(0, -1, 0)

	stats := &Stats{
		TotalViews: int64(len(views)),
	}

	uniqueIPs := make(map[string]struct{})
	for _, v := range views {
		uniqueIPs[v.ViewerIP] = struct{}{}

		day := StartOfDay(v.ViewedAt)
		if day.Equal(today) {
			stats.ViewsToday++
		}
		if !day.Before(weekStart) {
			stats.ViewsThisWeek++
		}
		if !day.Before(monthStart) {
			stats.ViewsThisMonth++
		}
	}
	stats.UniqueViewers = int64(len(uniqueIPs))

	stats.ViewsTrend = viewsTrend(views, today, s.trendDays)
	stats.TopCountries = breakdown(views, func(v models.CardView) string { return v.Country }, topCountriesLimit)
	stats.TopDevices = breakdown(views, func(v models.CardView) string { return v.DeviceType }, 0)
	stats.TopBrowsers = breakdown(views, func(v models.CardView) string { return v.Browser }, 0)

	return stats
}

// viewsTrend builds a zero-filled per-day series of days+1 points ending today.
func viewsTrend(views []models.CardView, today time.Time, days int) []TrendPoint {
	perDay := make(map[time.Time]int64, len(views))
	for _, v := range views {
		perDay[StartOfDay(v.ViewedAt)]++
	}

	start := today.AddDate(0, 0, -days)
	trend := make([]TrendPoint, 0, days+1)
	for i := 0; i <= days; i++ {
		date := start.AddDate(0, 0, i)
		trend = append(trend, TrendPoint{Date: date, Views: perDay[date]})
	}
	return trend
}

// breakdown groups views by one categorical field into count/percentage
// buckets sorted by count descending. Empty field values fall into "Unknown".
// Ties keep first-seen order; a zero total yields an empty list.
func breakdown(views []models.CardView, field func(models.CardView) string, limit int) []Breakdown {
	total := len(views)
	if total == 0 {
		return []Breakdown{}
	}

	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, v := range views {
		label := field(v)
		if label == "" {
			label = "Unknown"
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	out := make([]Breakdown, 0, len(order))
	for _, label := range order {
		count := counts[label]
		out = append(out, Breakdown{
			Label:      label,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// latestViews returns up to limit rows ordered by ViewedAt descending.
func latestViews(views []models.CardView, limit int) []models.CardView {
	out := make([]models.CardView, len(views))
	copy(out, views)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ViewedAt.After(out[j].ViewedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// StartOfDay returns local midnight for t. Every day boundary in the
// analytics surface derives from this so windows line up with the calendar
// day the viewer saw, not the UTC one.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
