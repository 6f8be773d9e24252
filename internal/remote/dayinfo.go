package remote

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jjacobsen/almanak/internal/datemath"
	"github.com/jjacobsen/almanak/internal/models"
	"github.com/jjacobsen/almanak/internal/store"
)

// temperatureParameter labels the summary entry carrying the min-max range.
const temperatureParameter = "Temperatur"

// fetchDayLayout is the request-path date format of the day-info endpoint.
const fetchDayLayout = "02-01-2006"

// DayInfoService is the read-through cache for per-day weather/astronomy
// snapshots. The remote source has no future data, so misses for future
// days short-circuit without a network call.
type DayInfoService struct {
	db     *store.DB
	base   string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group
}

// NewDayInfoService creates a day-info cache against the given endpoint
// base (the dd-MM-yyyy day is appended to it). A nil client or logger uses
// defaults.
func NewDayInfoService(db *store.DB, base string, client *http.Client, logger *slog.Logger) *DayInfoService {
	if client == nil {
		client = newHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DayInfoService{db: db, base: base, client: client, logger: logger, now: time.Now}
}

// WithClock overrides the service's notion of "today". Tests only.
func (s *DayInfoService) WithClock(now func() time.Time) *DayInfoService {
	s.now = now
	return s
}

// Lookup returns the snapshot for day's calendar day, fetching and
// importing it on a local miss when the day is today or in the past. Any
// failure is logged and reported as a miss; concurrent lookups for the same
// day collapse into one fetch.
func (s *DayInfoService) Lookup(ctx context.Context, day time.Time) *models.DayInfo {
	key := datemath.DayKey(day)

	if cached, err := s.db.DayInfoOn(day); err != nil {
		s.logger.Warn("day info lookup failed",
			slog.String("day", key), slog.String("error", err.Error()))
		return nil
	} else if cached != nil {
		return cached
	}

	if datemath.AfterDay(day, s.now()) {
		return nil
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.fetchAndImport(ctx, day), nil
	})
	info, _ := v.(*models.DayInfo)
	return info
}

func (s *DayInfoService) fetchAndImport(ctx context.Context, day time.Time) *models.DayInfo {
	key := datemath.DayKey(day)

	var dto DayInfoDTO
	if err := getJSON(ctx, s.client, s.base+day.Format(fetchDayLayout), &dto); err != nil {
		s.logger.Warn("day info fetch failed",
			slog.String("day", key), slog.String("error", err.Error()))
		return nil
	}

	date, err := datemath.ParseDayKey(dto.Date)
	if err != nil {
		s.logger.Warn("day info fetch returned malformed date",
			slog.String("day", key), slog.String("date", dto.Date))
		return nil
	}

	record := models.DayInfo{
		Date:    date,
		Sunrise: dto.Astronomy.Sunrise,
		Sunset:  dto.Astronomy.Sunset,
	}
	for _, entry := range dto.Weather.Summary {
		if entry.Parameter == temperatureParameter {
			record.TempMin, record.TempMax = parseTemperatureRange(entry.SummaryValue)
			break
		}
	}

	if err := s.db.InsertDayInfo(record); err != nil {
		s.logger.Warn("day info import failed",
			slog.String("day", key), slog.String("error", err.Error()))
		return nil
	}

	// Read back so a concurrently imported record stays authoritative.
	stored, err := s.db.DayInfoOn(date)
	if err != nil {
		s.logger.Warn("day info read-back failed",
			slog.String("day", key), slog.String("error", err.Error()))
		return nil
	}
	return stored
}

// parseTemperatureRange parses a provider "min-max" value such as "5-9".
// The minimum may carry a comma decimal separator ("7,5-9"). A value that
// does not split into exactly two parts degrades to 0/0 silently.
func parseTemperatureRange(value string) (min, max float64) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return 0, 0
	}
	min, _ = strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", "."), 64)
	max, _ = strconv.ParseFloat(parts[1], 64)
	return min, max
}
