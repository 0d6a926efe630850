package schema

import "github.com/feral-file/ff-nft-warehouse/internal/domain"

// OwnerRecord is the parquet layout of a distinct collection owner row
type OwnerRecord struct {
	Category     string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Trader       string `parquet:"name=trader_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FirstSeen    int64  `parquet:"name=dt_first_record, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// NewOwnerRecord converts an owner ledger row into its parquet layout
func NewOwnerRecord(o domain.OwnerFirstSeen) OwnerRecord {
	return OwnerRecord{
		Category:     string(o.Category),
		CollectionID: o.CollectionID,
		Trader:       o.Trader,
		FirstSeen:    toMillis(o.FirstSeen),
	}
}

// Domain converts the record back into an owner ledger row
func (r OwnerRecord) Domain() domain.OwnerFirstSeen {
	return domain.OwnerFirstSeen{
		Category:     domain.Category(r.Category),
		CollectionID: r.CollectionID,
		Trader:       r.Trader,
		FirstSeen:    fromMillis(r.FirstSeen),
	}
}

// TokenSeenRecord is the parquet layout of a distinct collection token row
type TokenSeenRecord struct {
	Category     string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenID      string `parquet:"name=token_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FirstSeen    int32  `parquet:"name=first_rec_dt, type=INT32, convertedtype=DATE"`
}

// NewTokenSeenRecord converts a token ledger row into its parquet layout
func NewTokenSeenRecord(t domain.TokenFirstSeen) TokenSeenRecord {
	return TokenSeenRecord{
		Category:     string(t.Category),
		CollectionID: t.CollectionID,
		TokenID:      t.TokenID,
		FirstSeen:    toDate(t.FirstSeen),
	}
}

// Domain converts the record back into a token ledger row
func (r TokenSeenRecord) Domain() domain.TokenFirstSeen {
	return domain.TokenFirstSeen{
		Category:     domain.Category(r.Category),
		CollectionID: r.CollectionID,
		TokenID:      r.TokenID,
		FirstSeen:    fromDate(r.FirstSeen),
	}
}
