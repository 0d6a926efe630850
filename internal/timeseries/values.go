package timeseries

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// valueRow is the latest known value of a token as of aggDate
type valueRow struct {
	token     domain.TokenKey
	aggDate   time.Time
	latestTrx time.Time
	value     float64
}

// valuePoint is the collection's running token value sum and trade-day sum as of date
type valuePoint struct {
	date    time.Time
	sumUSD  float64
	sumDays float64
}

type collectionValues []valuePoint

// asOf returns the running sums of the last point dated on or before day, NaN when none
func (v collectionValues) asOf(day time.Time) (float64, float64) {
	n := sort.Search(len(v), func(i int) bool {
		return v[i].date.After(day)
	})
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	return v[n-1].sumUSD, v[n-1].sumDays
}

// tokenValues tracks the latest sale value of every token of a collection. The previous
// KPI table seeds each token's last value on the day before the month. Every in-month
// trading day replaces the token's value, and the collection sums accumulate the deltas.
func tokenValues(monat domain.Monat, previous []domain.KPIRow, txs []domain.Transaction) map[domain.CollectionKey]collectionValues {
	firstDay := monat.FirstDay()
	prevDay := firstDay.AddDate(0, 0, -1)

	var rows []valueRow

	seeds := slices.Clone(previous)
	slices.SortStableFunc(seeds, func(a, b domain.KPIRow) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	lastSeed := make(map[domain.TokenKey]domain.KPIRow)
	for _, r := range seeds {
		lastSeed[r.TokenKey()] = r
	}
	for k, r := range lastSeed {
		rows = append(rows, valueRow{token: k, aggDate: prevDay, latestTrx: domain.Day(r.Timestamp), value: r.ValueUSD})
	}

	countable := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Countable() {
			countable = append(countable, tx)
		}
	}
	slices.SortStableFunc(countable, func(a, b domain.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	type tokenDay struct {
		token domain.TokenKey
		day   time.Time
	}
	lastOfDay := make(map[tokenDay]float64)
	for _, tx := range countable {
		k := tokenDay{
			token: domain.TokenKey{Category: tx.Category, CollectionID: tx.CollectionID, TokenID: tx.TokenID},
			day:   domain.Day(tx.Timestamp),
		}
		lastOfDay[k] = tx.ValueUSD
	}
	for k, v := range lastOfDay {
		rows = append(rows, valueRow{token: k.token, aggDate: k.day, latestTrx: k.day, value: v})
	}

	slices.SortFunc(rows, func(a, b valueRow) int {
		return cmp.Or(
			cmp.Compare(a.token.Category, b.token.Category),
			cmp.Compare(a.token.CollectionID, b.token.CollectionID),
			cmp.Compare(a.token.TokenID, b.token.TokenID),
			a.aggDate.Compare(b.aggDate),
			a.latestTrx.Compare(b.latestTrx),
		)
	})

	type delta struct {
		usd  float64
		days float64
	}
	deltas := make(map[dayKey]*delta)
	var prevToken domain.TokenKey
	var prevValue, prevDays float64
	for i, r := range rows {
		if i == 0 || r.token != prevToken {
			prevToken, prevValue, prevDays = r.token, 0, 0
		}
		dayCount := float64(domain.DaysBetween(r.latestTrx, r.aggDate))
		addedDays := dayCount - prevDays
		if !r.aggDate.Before(firstDay) {
			addedDays -= float64(r.aggDate.Day() - 1)
		}

		k := dayKey{Collection: domain.CollectionKey{Category: r.token.Category, CollectionID: r.token.CollectionID}, Date: r.aggDate}
		d, ok := deltas[k]
		if !ok {
			d = &delta{}
			deltas[k] = d
		}
		d.usd += r.value - prevValue
		d.days += addedDays

		prevValue, prevDays = r.value, dayCount
	}

	points := make(map[domain.CollectionKey]collectionValues)
	for k, d := range deltas {
		points[k.Collection] = append(points[k.Collection], valuePoint{date: k.Date, sumUSD: d.usd, sumDays: d.days})
	}
	for k, v := range points {
		slices.SortFunc(v, func(a, b valuePoint) int {
			return a.date.Compare(b.date)
		})
		for i := 1; i < len(v); i++ {
			v[i].sumUSD += v[i-1].sumUSD
			v[i].sumDays += v[i-1].sumDays
		}
		points[k] = v
	}
	return points
}
