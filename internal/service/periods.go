package service

import (
	"fmt"
	"time"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

// Period is a half-open billing interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	t = dateOnly(t)
	return !t.Before(p.Start) && t.Before(p.End)
}

// LastDay is the final calendar day inside the period.
func (p Period) LastDay() time.Time {
	return p.End.AddDate(0, 0, -1)
}

func (p Period) String() string {
	return fmt.Sprintf("%s - %s", p.Start.Format(DisplayDateLayout), p.LastDay().Format(DisplayDateLayout))
}

func validatePeriodDay(periodDay int) error {
	if periodDay < 1 || periodDay > 31 {
		return fmt.Errorf("%w: got %d", models.ErrInvalidPeriodDay, periodDay)
	}
	return nil
}

// boundary is the period boundary for the month containing (year, month),
// clamped to the last day of short months.
func boundary(year int, month time.Month, periodDay int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if periodDay > last {
		periodDay = last
	}
	return time.Date(first.Year(), first.Month(), periodDay, 0, 0, 0, 0, time.UTC)
}

func shiftMonth(t time.Time, months int) (int, time.Month) {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return first.Year(), first.Month()
}

// PeriodContaining returns the full billing period that contains date.
func PeriodContaining(periodDay int, date time.Time) (Period, error) {
	if err := validatePeriodDay(periodDay); err != nil {
		return Period{}, err
	}
	date = dateOnly(date)

	b := boundary(date.Year(), date.Month(), periodDay)
	if date.Before(b) {
		y, m := shiftMonth(date, -1)
		return Period{Start: boundary(y, m, periodDay), End: b}, nil
	}
	y, m := shiftMonth(date, 1)
	return Period{Start: b, End: boundary(y, m, periodDay)}, nil
}

// PeriodSeq lazily walks the billing periods overlapping an inclusive date
// range. The first and last periods are clipped to the range.
type PeriodSeq struct {
	periodDay int
	from      time.Time
	end       time.Time
	cursor    time.Time
}

func PeriodsFor(periodDay int, from, to time.Time) (*PeriodSeq, error) {
	if err := validatePeriodDay(periodDay); err != nil {
		return nil, err
	}
	from = dateOnly(from)
	return &PeriodSeq{
		periodDay: periodDay,
		from:      from,
		end:       dateOnly(to).AddDate(0, 0, 1),
		cursor:    from,
	}, nil
}

func (s *PeriodSeq) Next() (Period, bool) {
	if !s.cursor.Before(s.end) {
		return Period{}, false
	}
	full, err := PeriodContaining(s.periodDay, s.cursor)
	if err != nil {
		return Period{}, false
	}
	p := Period{Start: s.cursor, End: full.End}
	if p.End.After(s.end) {
		p.End = s.end
	}
	s.cursor = p.End
	return p, true
}

func (s *PeriodSeq) Reset() {
	s.cursor = s.from
}

// All restarts the sequence and drains it.
func (s *PeriodSeq) All() []Period {
	s.Reset()
	var periods []Period
	for p, ok := s.Next(); ok; p, ok = s.Next() {
		periods = append(periods, p)
	}
	return periods
}
