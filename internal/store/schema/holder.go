package schema

import "github.com/feral-file/ff-nft-warehouse/internal/domain"

// HolderRecord is the parquet layout of a holder ledger row
type HolderRecord struct {
	Category     string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenID      string `parquet:"name=token_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Trader       string `parquet:"name=trader_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Holding      bool   `parquet:"name=nftu_hold_flg, type=BOOLEAN"`

	SellDateLatest  *int64  `parquet:"name=nftu_sell_date_latest, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	SellPriceLatest float64 `parquet:"name=nftu_sell_price_usd_latest, type=DOUBLE"`
	SellAmountUSD   float64 `parquet:"name=nftu_sell_amt_usd_sum, type=DOUBLE"`
	SellCount       int64   `parquet:"name=nftu_sell_cnt, type=INT64"`

	BuyDateLatest  *int64  `parquet:"name=nftu_buy_date_latest, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	BuyPriceLatest float64 `parquet:"name=nftu_buy_price_usd_latest, type=DOUBLE"`
	BuyAmountUSD   float64 `parquet:"name=nftu_buy_amt_usd_sum, type=DOUBLE"`
	BuyCount       int64   `parquet:"name=nftu_buy_cnt, type=INT64"`

	MintCount int64   `parquet:"name=nftu_mint_flg, type=INT64"`
	MintUSD   float64 `parquet:"name=nftu_mint_usd, type=DOUBLE"`
}

// NewHolderRecord converts a ledger entry into its parquet layout
func NewHolderRecord(e domain.HolderEntry) HolderRecord {
	return HolderRecord{
		Category:        string(e.Category),
		CollectionID:    e.CollectionID,
		TokenID:         e.TokenID,
		Trader:          e.Trader,
		Holding:         e.Holding,
		SellDateLatest:  toOptionalMillis(e.SellDateLatest),
		SellPriceLatest: e.SellPriceLatest,
		SellAmountUSD:   e.SellAmountUSD,
		SellCount:       e.SellCount,
		BuyDateLatest:   toOptionalMillis(e.BuyDateLatest),
		BuyPriceLatest:  e.BuyPriceLatest,
		BuyAmountUSD:    e.BuyAmountUSD,
		BuyCount:        e.BuyCount,
		MintCount:       e.MintCount,
		MintUSD:         e.MintUSD,
	}
}

// Domain converts the record back into a ledger entry
func (r HolderRecord) Domain() domain.HolderEntry {
	return domain.HolderEntry{
		Category:        domain.Category(r.Category),
		CollectionID:    r.CollectionID,
		TokenID:         r.TokenID,
		Trader:          r.Trader,
		Holding:         r.Holding,
		SellDateLatest:  fromOptionalMillis(r.SellDateLatest),
		SellPriceLatest: r.SellPriceLatest,
		SellAmountUSD:   r.SellAmountUSD,
		SellCount:       r.SellCount,
		BuyDateLatest:   fromOptionalMillis(r.BuyDateLatest),
		BuyPriceLatest:  r.BuyPriceLatest,
		BuyAmountUSD:    r.BuyAmountUSD,
		BuyCount:        r.BuyCount,
		MintCount:       r.MintCount,
		MintUSD:         r.MintUSD,
	}
}
