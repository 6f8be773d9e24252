package remote

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jjacobsen/almanak/internal/datemath"
	"github.com/jjacobsen/almanak/internal/models"
	"github.com/jjacobsen/almanak/internal/store"
)

// HolidayService is the read-through cache for public holidays. Records are
// imported a full year at a time; a year with at least one local record is
// considered already imported.
type HolidayService struct {
	db     *store.DB
	base   string
	client *http.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewHolidayService creates a holiday cache against the given endpoint base
// (the year is appended to it). A nil client or logger uses defaults.
func NewHolidayService(db *store.DB, base string, client *http.Client, logger *slog.Logger) *HolidayService {
	if client == nil {
		client = newHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HolidayService{db: db, base: base, client: client, logger: logger}
}

// Lookup returns the holiday stored for day's calendar day, or nil. Lookups
// never hit the network; Preload populates the cache. Storage failures are
// logged and reported as a miss.
func (s *HolidayService) Lookup(day time.Time) *models.Holiday {
	h, err := s.db.HolidayOn(day)
	if err != nil {
		s.logger.Warn("holiday lookup failed",
			slog.String("day", datemath.DayKey(day)),
			slog.String("error", err.Error()))
		return nil
	}
	return h
}

// Preload ensures the given year's holidays are present locally, fetching
// the year remotely only when no record for it exists. Failures are logged
// and swallowed; concurrent calls for the same year collapse into one fetch.
func (s *HolidayService) Preload(ctx context.Context, year int) {
	_, _, _ = s.group.Do(strconv.Itoa(year), func() (any, error) {
		n, err := s.db.HolidayYearCount(year)
		if err != nil {
			s.logger.Warn("holiday year check failed",
				slog.Int("year", year), slog.String("error", err.Error()))
			return nil, nil
		}
		if n > 0 {
			return nil, nil
		}

		var resp YearResponse
		if err := getJSON(ctx, s.client, s.base+strconv.Itoa(year), &resp); err != nil {
			s.logger.Warn("holiday fetch failed",
				slog.Int("year", year), slog.String("error", err.Error()))
			return nil, nil
		}

		records := importableHolidays(resp.Days, year)
		if len(records) == 0 {
			s.logger.Info("holiday import: nothing to import", slog.Int("year", year))
			return nil, nil
		}
		if err := s.db.InsertHolidays(records); err != nil {
			s.logger.Warn("holiday import failed",
				slog.Int("year", year), slog.String("error", err.Error()))
			return nil, nil
		}
		s.logger.Info("holiday year imported",
			slog.Int("year", year), slog.Int("count", len(records)))
		return nil, nil
	})
}

// importableHolidays converts remote day entries into records: one per day,
// for the first event flagged as a holiday. Malformed dates skip that day
// entry only.
func importableHolidays(days []DayDTO, year int) []models.Holiday {
	var out []models.Holiday
	for _, day := range days {
		date, err := datemath.ParseDayKey(day.Date)
		if err != nil {
			continue
		}
		for _, ev := range day.Events {
			if !ev.Holiday {
				continue
			}
			out = append(out, models.Holiday{
				ID:    uuid.New(),
				Date:  date,
				Title: ev.DanishShort,
				Year:  year,
			})
			break
		}
	}
	return out
}
