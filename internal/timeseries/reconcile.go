package timeseries

import (
	"cmp"
	"math"
	"slices"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/stats"
)

// cumulativeFields returns pointers to the fields carried forward over unknown days
func cumulativeFields(d *domain.CollectionDay) []*float64 {
	return []*float64{
		&d.OwnerCount,
		&d.TokenCount,
		&d.TokenSumUSD,
		&d.AvgLatestValueUSD,
		&d.MaxValueSeen,
		&d.TrxCountCumulative,
		&d.TrxUSDCumulative,
	}
}

// Reconcile aligns the fresh series with the previous month's series. Unknown
// cumulative values are filled forward per collection, the peak value never
// decreases, and only the days of the month are returned.
func Reconcile(previous, fresh []domain.CollectionDay, monat domain.Monat) []domain.CollectionDay {
	all := make([]domain.CollectionDay, 0, len(previous)+len(fresh))
	all = append(all, previous...)
	all = append(all, fresh...)
	slices.SortStableFunc(all, func(a, b domain.CollectionDay) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.CollectionID, b.CollectionID),
			a.ReportDate.Compare(b.ReportDate),
		)
	})

	var last []float64
	peak := math.NaN()
	for i := range all {
		d := &all[i]
		fields := cumulativeFields(d)
		if i == 0 || d.Key() != all[i-1].Key() {
			last = make([]float64, len(fields))
			for j := range last {
				last[j] = math.NaN()
			}
			peak = math.NaN()
		}

		for j, f := range fields {
			if math.IsNaN(*f) {
				*f = last[j]
			} else {
				last[j] = *f
			}
		}

		if !math.IsNaN(d.MaxValueSeen) {
			peak = stats.MaxIgnoringNaN(peak, d.MaxValueSeen)
			d.MaxValueSeen = peak
		}
	}

	firstDay := monat.FirstDay()
	out := make([]domain.CollectionDay, 0, len(fresh))
	for _, d := range all {
		if !d.ReportDate.Before(firstDay) {
			out = append(out, d)
		}
	}
	return out
}
