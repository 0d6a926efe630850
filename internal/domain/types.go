package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Monat is a calendar month encoded as a yyyymm integer
type Monat int

// MonatOf returns the month a timestamp falls into, in UTC
func MonatOf(t time.Time) Monat {
	t = t.UTC()
	return Monat(t.Year()*100 + int(t.Month()))
}

// Year returns the year part of the month
func (m Monat) Year() int {
	return int(m) / 100
}

// Month returns the month part (1-12)
func (m Monat) Month() int {
	return int(m) % 100
}

// Valid checks if the month is a calendar month
func (m Monat) Valid() bool {
	return m.Year() > 0 && m.Month() >= 1 && m.Month() <= 12
}

// FirstDay returns midnight UTC of the first day of the month
func (m Monat) FirstDay() time.Time {
	return time.Date(m.Year(), time.Month(m.Month()), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month
func (m Monat) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

func (m Monat) String() string {
	return fmt.Sprintf("%06d", int(m))
}

// Category is a token category tag (art, games, collectibles, ...)
type Category string

// Key returns the lower-cased category used in table paths
func (c Category) Key() string {
	return strings.ToLower(strings.TrimSpace(string(c)))
}

// Valid checks if the category is usable as a partition key
func (c Category) Valid() bool {
	return c.Key() != "" && !strings.ContainsAny(c.Key(), `/\`)
}

// Day truncates a timestamp to midnight UTC
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b, rounded towards minus infinity
func DaysBetween(a, b time.Time) int64 {
	d := b.Sub(a)
	days := int64(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// Transaction is one marketplace sale fact
type Transaction struct {
	Category     Category
	MarketID     string
	CollectionID string
	TokenID      string
	Seller       string
	Buyer        string
	Timestamp    time.Time
	CryptoSymbol string
	ValueCrypto  float64
	// ValueUSD is NaN when the USD value is unknown
	ValueUSD  float64
	Duplicate bool
}

// TransactionKey is the identity of a transaction
type TransactionKey struct {
	CollectionID string
	TokenID      string
	Seller       string
	Buyer        string
	Timestamp    int64
}

// Key returns the identity of the transaction
func (t Transaction) Key() TransactionKey {
	return TransactionKey{
		CollectionID: t.CollectionID,
		TokenID:      t.TokenID,
		Seller:       t.Seller,
		Buyer:        t.Buyer,
		Timestamp:    t.Timestamp.UnixMilli(),
	}
}

// Monat returns the partition month of the transaction
func (t Transaction) Monat() Monat {
	return MonatOf(t.Timestamp)
}

// Countable reports whether the transaction takes part in downstream aggregation
func (t Transaction) Countable() bool {
	return !t.Duplicate && !math.IsNaN(t.ValueUSD)
}

// TokenKey identifies a token within a category
type TokenKey struct {
	Category     Category
	CollectionID string
	TokenID      string
}

// CollectionKey identifies a collection within a category
type CollectionKey struct {
	Category     Category
	CollectionID string
}

// Token is a token master record
type Token struct {
	Category     Category
	CollectionID string
	TokenID      string

	// Descriptive fields
	CollectionName string
	Name           string
	Description    string
	URL            string
	PermanentLink  string

	// Mint group, compared by MintDate
	MintCrypto      string
	MintPriceUSD    float64
	MintPriceCrypto float64
	MinterAddress   string
	MintDate        time.Time

	// Latest-sale group, compared by LatestSaleDate
	LatestSaleCrypto  string
	LatestSaleDate    time.Time
	LatestPriceUSD    float64
	LatestPriceCrypto float64
}

// Key returns the identity of the token
func (t Token) Key() TokenKey {
	return TokenKey{Category: t.Category, CollectionID: t.CollectionID, TokenID: t.TokenID}
}

// HolderKey identifies a holder ledger entry
type HolderKey struct {
	Category     Category
	CollectionID string
	TokenID      string
	Trader       string
}

// HolderEntry is one (token, trader) row of the monthly holder ledger.
// Zero times mean "no such action" and NaN prices mean "unknown".
type HolderEntry struct {
	Category     Category
	CollectionID string
	TokenID      string
	Trader       string

	Holding bool

	SellDateLatest  time.Time
	SellPriceLatest float64
	SellAmountUSD   float64
	SellCount       int64

	BuyDateLatest  time.Time
	BuyPriceLatest float64
	BuyAmountUSD   float64
	BuyCount       int64

	MintCount int64
	MintUSD   float64
}

// Key returns the identity of the entry
func (e HolderEntry) Key() HolderKey {
	return HolderKey{Category: e.Category, CollectionID: e.CollectionID, TokenID: e.TokenID, Trader: e.Trader}
}

// KPIRow is one row of the cumulative NFT KPI table
type KPIRow struct {
	Category     Category
	CollectionID string
	TokenID      string
	Minter       string
	Timestamp    time.Time

	ValueUSD   float64
	Count      int64
	TenureDays int64

	TokenCountCum     int64
	TokenUSDCum       float64
	ParallelOwnersMax int64

	CollectionCountCum int64
	CollectionUSDCum   float64

	MinterCountCum int64
	MinterUSDCum   float64

	// InMonth is false for rows carried forward from the previous month
	InMonth bool
}

// TokenKey returns the token the row belongs to
func (r KPIRow) TokenKey() TokenKey {
	return TokenKey{Category: r.Category, CollectionID: r.CollectionID, TokenID: r.TokenID}
}

// OwnerFirstSeen is one row of the cumulative distinct collection owner ledger
type OwnerFirstSeen struct {
	Category     Category
	CollectionID string
	Trader       string
	FirstSeen    time.Time
}

// TokenFirstSeen is one row of the cumulative distinct collection token ledger
type TokenFirstSeen struct {
	Category     Category
	CollectionID string
	TokenID      string
	FirstSeen    time.Time
}

// WindowStats holds the moving-window aggregates of one report day
type WindowStats struct {
	Days     int
	CountSum int64
	USDSum   float64
	USDMin   float64
	USDMax   float64
	USDStd   float64
	USDP25   float64
	USDP75   float64
	AvgPrice float64
}

// CollectionDay is one row of the collection time series.
// Cumulative fields are NaN when unknown for the day.
type CollectionDay struct {
	Category     Category
	CollectionID string
	ReportDate   time.Time

	OwnerCount         float64
	TokenCount         float64
	TokenSumUSD        float64
	AvgLatestValueUSD  float64
	AvgLatestTrxDay    float64
	MaxValueSeen       float64
	TrxCountCumulative float64
	TrxUSDCumulative   float64

	DailyCount    int64
	DailyUSD      float64
	AvgPriceDaily float64

	Windows []WindowStats
}

// Key returns the collection the row belongs to
func (d CollectionDay) Key() CollectionKey {
	return CollectionKey{Category: d.Category, CollectionID: d.CollectionID}
}

// NormalizeAddress normalizes an address to the format used by the blockchain.
// Hex addresses are checksummed, anything else is only trimmed.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "0x") && common.IsHexAddress(address) {
		return common.HexToAddress(address).String()
	}
	return address
}
