package period

import (
	"fmt"
	"iter"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// MonthAdd returns the month n months away from m. n may be negative.
func MonthAdd(m domain.Monat, n int) domain.Monat {
	idx := m.Year()*12 + m.Month() - 1 + n
	year := floorDiv(idx, 12)
	month := idx - year*12 + 1
	return domain.Monat(year*100 + month)
}

// MonthRange returns the ascending months from MonthAdd(from, -lookback) to to, inclusive
func MonthRange(from, to domain.Monat, lookback int) ([]domain.Monat, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMonat, from)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMonat, to)
	}
	if lookback < 0 {
		return nil, fmt.Errorf("lookback must not be negative: %d", lookback)
	}

	start := MonthAdd(from, -lookback)
	if start > to {
		return nil, fmt.Errorf("%w: range start %d is after %d", domain.ErrInvalidMonat, start, to)
	}

	var months []domain.Monat
	for m := start; m <= to; m = MonthAdd(m, 1) {
		months = append(months, m)
	}
	return months, nil
}

// MonthToDays returns every calendar day of the month, midnight UTC, in order.
// The sequence is lazy and can be ranged over any number of times.
func MonthToDays(m domain.Monat) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		first := m.FirstDay()
		for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// DaysIn returns the number of days in the month
func DaysIn(m domain.Monat) int {
	return m.LastDay().Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
