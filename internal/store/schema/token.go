package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// TokenRecord is the parquet layout of a token master row
type TokenRecord struct {
	Category       string `parquet:"name=token_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionID   string `parquet:"name=collection_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenID        string `parquet:"name=token_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollectionName string `parquet:"name=token_collection_nm, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name           string `parquet:"name=token_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description    string `parquet:"name=token_description, type=BYTE_ARRAY, convertedtype=UTF8"`
	URL            string `parquet:"name=token_url_latest, type=BYTE_ARRAY, convertedtype=UTF8"`
	PermanentLink  string `parquet:"name=token_permanent_link, type=BYTE_ARRAY, convertedtype=UTF8"`

	MintCrypto      string  `parquet:"name=token_mint_crypto, type=BYTE_ARRAY, convertedtype=UTF8"`
	MintPriceUSD    float64 `parquet:"name=token_mint_price_usd, type=DOUBLE"`
	MintPriceCrypto float64 `parquet:"name=token_mint_price_crypto, type=DOUBLE"`
	MinterAddress   string  `parquet:"name=token_mint_address_est, type=BYTE_ARRAY, convertedtype=UTF8"`
	MintDate        *int64  `parquet:"name=token_mint_date_est, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`

	LatestSaleCrypto  string  `parquet:"name=token_latest_sales_crypto, type=BYTE_ARRAY, convertedtype=UTF8"`
	LatestSaleDate    *int64  `parquet:"name=token_latest_sales_date, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	LatestPriceUSD    float64 `parquet:"name=token_latest_price_usd, type=DOUBLE"`
	LatestPriceCrypto float64 `parquet:"name=token_latest_price_crypto, type=DOUBLE"`
}

// NewTokenRecord converts a token into its parquet layout
func NewTokenRecord(t domain.Token) TokenRecord {
	return TokenRecord{
		Category:          string(t.Category),
		CollectionID:      t.CollectionID,
		TokenID:           t.TokenID,
		CollectionName:    t.CollectionName,
		Name:              t.Name,
		Description:       t.Description,
		URL:               t.URL,
		PermanentLink:     t.PermanentLink,
		MintCrypto:        t.MintCrypto,
		MintPriceUSD:      t.MintPriceUSD,
		MintPriceCrypto:   t.MintPriceCrypto,
		MinterAddress:     t.MinterAddress,
		MintDate:          toOptionalMillis(t.MintDate),
		LatestSaleCrypto:  t.LatestSaleCrypto,
		LatestSaleDate:    toOptionalMillis(t.LatestSaleDate),
		LatestPriceUSD:    t.LatestPriceUSD,
		LatestPriceCrypto: t.LatestPriceCrypto,
	}
}

// Domain converts the record back into a token
func (r TokenRecord) Domain() domain.Token {
	return domain.Token{
		Category:          domain.Category(r.Category),
		CollectionID:      r.CollectionID,
		TokenID:           r.TokenID,
		CollectionName:    r.CollectionName,
		Name:              r.Name,
		Description:       r.Description,
		URL:               r.URL,
		PermanentLink:     r.PermanentLink,
		MintCrypto:        r.MintCrypto,
		MintPriceUSD:      r.MintPriceUSD,
		MintPriceCrypto:   r.MintPriceCrypto,
		MinterAddress:     r.MinterAddress,
		MintDate:          fromOptionalMillis(r.MintDate),
		LatestSaleCrypto:  r.LatestSaleCrypto,
		LatestSaleDate:    fromOptionalMillis(r.LatestSaleDate),
		LatestPriceUSD:    r.LatestPriceUSD,
		LatestPriceCrypto: r.LatestPriceCrypto,
	}
}

// TokenMaster represents the token_masters table - one row per token and category
type TokenMaster struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Category is the lower-cased token category the row belongs to
	Category string `gorm:"column:category;not null;type:text;uniqueIndex:idx_token_masters_identity,priority:1"`
	// CollectionID identifies the collection within the marketplace
	CollectionID string `gorm:"column:collection_id;not null;type:text;uniqueIndex:idx_token_masters_identity,priority:2"`
	// TokenID identifies the token within the collection
	TokenID string `gorm:"column:token_id;not null;type:text;uniqueIndex:idx_token_masters_identity,priority:3"`
	// Attributes holds the descriptive fields (collection name, name, description, links)
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb"`

	MintCrypto      string     `gorm:"column:mint_crypto;type:text"`
	MintPriceUSD    *float64   `gorm:"column:mint_price_usd"`
	MintPriceCrypto *float64   `gorm:"column:mint_price_crypto"`
	MinterAddress   string     `gorm:"column:minter_address;type:text;index"`
	MintDate        *time.Time `gorm:"column:mint_date"`

	LatestSaleCrypto  string     `gorm:"column:latest_sale_crypto;type:text"`
	LatestSaleDate    *time.Time `gorm:"column:latest_sale_date"`
	LatestPriceUSD    *float64   `gorm:"column:latest_price_usd"`
	LatestPriceCrypto *float64   `gorm:"column:latest_price_crypto"`

	// UpdatedAt is the timestamp when this row was last written
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TokenMaster) TableName() string {
	return "token_masters"
}

// tokenAttributes is the JSON shape of TokenMaster.Attributes
type tokenAttributes struct {
	CollectionName string `json:"collection_name,omitempty"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	URL            string `json:"url,omitempty"`
	PermanentLink  string `json:"permanent_link,omitempty"`
}

// NewTokenMaster converts a token into its database row
func NewTokenMaster(t domain.Token) (TokenMaster, error) {
	attrs, err := json.Marshal(tokenAttributes{
		CollectionName: t.CollectionName,
		Name:           t.Name,
		Description:    t.Description,
		URL:            t.URL,
		PermanentLink:  t.PermanentLink,
	})
	if err != nil {
		return TokenMaster{}, fmt.Errorf("failed to marshal token attributes: %w", err)
	}

	return TokenMaster{
		Category:          t.Category.Key(),
		CollectionID:      t.CollectionID,
		TokenID:           t.TokenID,
		Attributes:        datatypes.JSON(attrs),
		MintCrypto:        t.MintCrypto,
		MintPriceUSD:      nullableFloat(t.MintPriceUSD),
		MintPriceCrypto:   nullableFloat(t.MintPriceCrypto),
		MinterAddress:     t.MinterAddress,
		MintDate:          nullableTime(t.MintDate),
		LatestSaleCrypto:  t.LatestSaleCrypto,
		LatestSaleDate:    nullableTime(t.LatestSaleDate),
		LatestPriceUSD:    nullableFloat(t.LatestPriceUSD),
		LatestPriceCrypto: nullableFloat(t.LatestPriceCrypto),
	}, nil
}

// Domain converts the database row back into a token
func (m TokenMaster) Domain(category domain.Category) (domain.Token, error) {
	var attrs tokenAttributes
	if len(m.Attributes) > 0 {
		if err := json.Unmarshal(m.Attributes, &attrs); err != nil {
			return domain.Token{}, fmt.Errorf("failed to unmarshal token attributes: %w", err)
		}
	}

	return domain.Token{
		Category:          category,
		CollectionID:      m.CollectionID,
		TokenID:           m.TokenID,
		CollectionName:    attrs.CollectionName,
		Name:              attrs.Name,
		Description:       attrs.Description,
		URL:               attrs.URL,
		PermanentLink:     attrs.PermanentLink,
		MintCrypto:        m.MintCrypto,
		MintPriceUSD:      floatOrNaN(m.MintPriceUSD),
		MintPriceCrypto:   floatOrNaN(m.MintPriceCrypto),
		MinterAddress:     m.MinterAddress,
		MintDate:          timeOrZero(m.MintDate),
		LatestSaleCrypto:  m.LatestSaleCrypto,
		LatestSaleDate:    timeOrZero(m.LatestSaleDate),
		LatestPriceUSD:    floatOrNaN(m.LatestPriceUSD),
		LatestPriceCrypto: floatOrNaN(m.LatestPriceCrypto),
	}, nil
}
