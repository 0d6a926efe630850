package timeseries

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/stats"
)

// Input holds everything the series of one month is computed from
type Input struct {
	Monat     domain.Monat
	Windows   []int
	Estimated bool

	// Transactions of the month
	Transactions []domain.Transaction
	// KPI table of the month
	KPI []domain.KPIRow
	// PreviousKPI is the KPI table of the month before, empty for the first month
	PreviousKPI []domain.KPIRow
	// Owners is the owner ledger as of the month
	Owners []domain.OwnerFirstSeen
	// Tokens is the token ledger as of the month
	Tokens []domain.TokenFirstSeen
}

// ValidateWindows checks that the window lengths are positive and strictly ascending
func ValidateWindows(windows []int) error {
	if len(windows) == 0 {
		return fmt.Errorf("%w: no window configured", domain.ErrInvalidWindows)
	}
	for i, w := range windows {
		if w <= 0 {
			return fmt.Errorf("%w: window %d is not positive", domain.ErrInvalidWindows, w)
		}
		if i > 0 && w <= windows[i-1] {
			return fmt.Errorf("%w: %v is not strictly ascending", domain.ErrInvalidWindows, windows)
		}
	}
	return nil
}

// firstSeenDays maps each collection to the ascending first-seen days of its members
type firstSeenDays map[domain.CollectionKey][]time.Time

func (f firstSeenDays) add(k domain.CollectionKey, t time.Time) {
	f[k] = append(f[k], domain.Day(t))
}

func (f firstSeenDays) sortDays() {
	for _, days := range f {
		slices.SortFunc(days, func(a, b time.Time) int {
			return a.Compare(b)
		})
	}
}

// countAsOf returns the number of members first seen on or before day, NaN when none
func (f firstSeenDays) countAsOf(k domain.CollectionKey, day time.Time) float64 {
	days := f[k]
	n := sort.Search(len(days), func(i int) bool {
		return days[i].After(day)
	})
	if n == 0 {
		return math.NaN()
	}
	return float64(n)
}

// Compute builds the daily collection rows of the month, ordered by collection and date.
// Every collection of the two KPI tables gets a row per day from its mint date on.
func Compute(in Input) []domain.CollectionDay {
	collections := make(map[domain.CollectionKey]bool)
	for _, rows := range [][]domain.KPIRow{in.PreviousKPI, in.KPI} {
		for _, r := range rows {
			collections[domain.CollectionKey{Category: r.Category, CollectionID: r.CollectionID}] = true
		}
	}

	owners := make(firstSeenDays)
	for _, o := range in.Owners {
		owners.add(domain.CollectionKey{Category: o.Category, CollectionID: o.CollectionID}, o.FirstSeen)
	}
	owners.sortDays()

	tokens := make(firstSeenDays)
	for _, t := range in.Tokens {
		tokens.add(domain.CollectionKey{Category: t.Category, CollectionID: t.CollectionID}, t.FirstSeen)
	}
	tokens.sortDays()

	buffer := make([]domain.KPIRow, 0, len(in.PreviousKPI)+len(in.KPI))
	buffer = append(buffer, in.PreviousKPI...)
	buffer = append(buffer, in.KPI...)
	facts := buildFacts(buffer, in.Estimated)
	values := tokenValues(in.Monat, in.PreviousKPI, in.Transactions)

	keys := make([]domain.CollectionKey, 0, len(collections))
	for k := range collections {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b domain.CollectionKey) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.CollectionID, b.CollectionID),
		)
	})

	var out []domain.CollectionDay
	for _, k := range keys {
		// the mint date is the earliest first trade of the collection's owners
		ownerDays := owners[k]
		if len(ownerDays) == 0 {
			continue
		}
		mintDay := ownerDays[0]

		cf := facts[k]
		for day := range period.MonthToDays(in.Monat) {
			if day.Before(mintDay) {
				continue
			}
			out = append(out, computeDay(k, day, in.Windows, cf, values[k], owners, tokens))
		}
	}
	return out
}

func computeDay(k domain.CollectionKey, day time.Time, windows []int, cf *collectionFacts, values collectionValues, owners, tokens firstSeenDays) domain.CollectionDay {
	row := domain.CollectionDay{
		Category:     k.Category,
		CollectionID: k.CollectionID,
		ReportDate:   day,
		OwnerCount:   owners.countAsOf(k, day),
		TokenCount:   tokens.countAsOf(k, day),
		Windows:      make([]domain.WindowStats, len(windows)),
	}

	for i, w := range windows {
		row.Windows[i] = windowStats(w, cf.window(day, w))
	}

	for _, f := range cf.window(day, 1) {
		row.DailyCount += f.count
		row.DailyUSD += f.usd
	}
	row.AvgPriceDaily = stats.Ratio(row.DailyUSD, float64(row.DailyCount))

	row.MaxValueSeen, row.TrxCountCumulative, row.TrxUSDCumulative = cf.seen(day)

	sumUSD, sumDays := values.asOf(day)
	row.TokenSumUSD = sumUSD
	row.AvgLatestValueUSD = stats.Ratio(sumUSD, row.TokenCount)
	row.AvgLatestTrxDay = stats.Ratio(sumDays, row.TokenCount) + float64(day.Day())
	return row
}
