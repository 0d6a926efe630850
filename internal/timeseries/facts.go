package timeseries

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/stats"
)

// fact is one aggregation input of the collection series. In estimated mode a fact
// holds a whole day of the collection, otherwise a single transaction.
type fact struct {
	date     time.Time
	count    int64
	usd      float64
	maxValue float64
	countCum float64
	usdCum   float64
}

// collectionFacts holds a collection's facts ordered by date with running maxima
type collectionFacts struct {
	facts       []fact
	maxValue    []float64
	maxCountCum []float64
	maxUSDCum   []float64
}

type dayKey struct {
	Collection domain.CollectionKey
	Date       time.Time
}

// buildFacts turns the in-month KPI rows into per-collection facts
func buildFacts(rows []domain.KPIRow, estimated bool) map[domain.CollectionKey]*collectionFacts {
	byColl := make(map[domain.CollectionKey][]fact)
	if estimated {
		daily := make(map[dayKey]*fact)
		var order []dayKey
		for _, r := range rows {
			if !r.InMonth {
				continue
			}
			k := dayKey{Collection: domain.CollectionKey{Category: r.Category, CollectionID: r.CollectionID}, Date: domain.Day(r.Timestamp)}
			f, ok := daily[k]
			if !ok {
				f = &fact{date: k.Date, maxValue: math.NaN(), countCum: math.NaN(), usdCum: math.NaN()}
				daily[k] = f
				order = append(order, k)
			}
			f.count += r.Count
			f.usd += r.ValueUSD
			f.maxValue = stats.MaxIgnoringNaN(f.maxValue, r.ValueUSD)
			f.countCum = stats.MaxIgnoringNaN(f.countCum, float64(r.CollectionCountCum))
			f.usdCum = stats.MaxIgnoringNaN(f.usdCum, r.CollectionUSDCum)
		}
		for _, k := range order {
			byColl[k.Collection] = append(byColl[k.Collection], *daily[k])
		}
	} else {
		for _, r := range rows {
			if !r.InMonth {
				continue
			}
			k := domain.CollectionKey{Category: r.Category, CollectionID: r.CollectionID}
			byColl[k] = append(byColl[k], fact{
				date:     domain.Day(r.Timestamp),
				count:    r.Count,
				usd:      r.ValueUSD,
				maxValue: r.ValueUSD,
				countCum: float64(r.CollectionCountCum),
				usdCum:   r.CollectionUSDCum,
			})
		}
	}

	out := make(map[domain.CollectionKey]*collectionFacts, len(byColl))
	for k, facts := range byColl {
		slices.SortStableFunc(facts, func(a, b fact) int {
			return cmp.Compare(a.date.Unix(), b.date.Unix())
		})
		cf := &collectionFacts{
			facts:       facts,
			maxValue:    make([]float64, len(facts)),
			maxCountCum: make([]float64, len(facts)),
			maxUSDCum:   make([]float64, len(facts)),
		}
		maxValue, maxCount, maxUSD := math.NaN(), math.NaN(), math.NaN()
		for i, f := range facts {
			maxValue = stats.MaxIgnoringNaN(maxValue, f.maxValue)
			maxCount = stats.MaxIgnoringNaN(maxCount, f.countCum)
			maxUSD = stats.MaxIgnoringNaN(maxUSD, f.usdCum)
			cf.maxValue[i], cf.maxCountCum[i], cf.maxUSDCum[i] = maxValue, maxCount, maxUSD
		}
		out[k] = cf
	}
	return out
}

// upTo returns the number of facts dated on or before day
func (c *collectionFacts) upTo(day time.Time) int {
	if c == nil {
		return 0
	}
	return sort.Search(len(c.facts), func(i int) bool {
		return c.facts[i].date.After(day)
	})
}

// window returns the facts dated in (day - days, day]
func (c *collectionFacts) window(day time.Time, days int) []fact {
	if c == nil {
		return nil
	}
	hi := c.upTo(day)
	lo := c.upTo(day.AddDate(0, 0, -days))
	return c.facts[lo:hi]
}

// seen returns the running maxima over the facts dated on or before day, NaN when none
func (c *collectionFacts) seen(day time.Time) (maxValue, countCum, usdCum float64) {
	n := c.upTo(day)
	if n == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return c.maxValue[n-1], c.maxCountCum[n-1], c.maxUSDCum[n-1]
}

func windowStats(days int, members []fact) domain.WindowStats {
	values := make([]float64, len(members))
	var count int64
	for i, f := range members {
		values[i] = f.usd
		count += f.count
	}
	sum := stats.Sum(values)
	return domain.WindowStats{
		Days:     days,
		CountSum: count,
		USDSum:   sum,
		USDMin:   stats.Min(values),
		USDMax:   stats.Max(values),
		USDStd:   stats.StdDev(values),
		USDP25:   stats.Percentile(values, 0.25),
		USDP75:   stats.Percentile(values, 0.75),
		AvgPrice: stats.Ratio(sum, float64(count)),
	}
}
