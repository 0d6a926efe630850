package schema

import "github.com/feral-file/ff-nft-warehouse/internal/domain"

// TransactionRecord is the parquet layout of a transaction partition row
type TransactionRecord struct {
	Category     string  `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	MarketID     string  `parquet:"name=market_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string  `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenID      string  `parquet:"name=token_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Seller       string  `parquet:"name=trx_seller_address, type=BYTE_ARRAY, convertedtype=UTF8"`
	Buyer        string  `parquet:"name=trx_buyer_address, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp    int64   `parquet:"name=trx_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	CryptoSymbol string  `parquet:"name=trx_crypto, type=BYTE_ARRAY, convertedtype=UTF8"`
	ValueCrypto  float64 `parquet:"name=trx_value_crypto, type=DOUBLE"`
	ValueUSD     float64 `parquet:"name=trx_value_usd, type=DOUBLE"`
	Duplicate    bool    `parquet:"name=trx_duplication_flg, type=BOOLEAN"`
}

// NewTransactionRecord converts a transaction into its parquet layout
func NewTransactionRecord(t domain.Transaction) TransactionRecord {
	return TransactionRecord{
		Category:     string(t.Category),
		MarketID:     t.MarketID,
		CollectionID: t.CollectionID,
		TokenID:      t.TokenID,
		Seller:       t.Seller,
		Buyer:        t.Buyer,
		Timestamp:    toMillis(t.Timestamp),
		CryptoSymbol: t.CryptoSymbol,
		ValueCrypto:  t.ValueCrypto,
		ValueUSD:     t.ValueUSD,
		Duplicate:    t.Duplicate,
	}
}

// Domain converts the record back into a transaction
func (r TransactionRecord) Domain() domain.Transaction {
	return domain.Transaction{
		Category:     domain.Category(r.Category),
		MarketID:     r.MarketID,
		CollectionID: r.CollectionID,
		TokenID:      r.TokenID,
		Seller:       r.Seller,
		Buyer:        r.Buyer,
		Timestamp:    fromMillis(r.Timestamp),
		CryptoSymbol: r.CryptoSymbol,
		ValueCrypto:  r.ValueCrypto,
		ValueUSD:     r.ValueUSD,
		Duplicate:    r.Duplicate,
	}
}
