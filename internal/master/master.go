// Package master maintains the per-category token master records.
package master

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

type key struct {
	CollectionID string
	TokenID      string
}

func keyOf(t domain.Token) key {
	return key{CollectionID: t.CollectionID, TokenID: t.TokenID}
}

// Merge folds the incoming records into the existing master and returns the result ordered
// by collection and token. Repeated keys on either side collapse into one record.
//   - new tokens are inserted
//   - the mint group is replaced by an earlier incoming mint date
//   - the latest-sale group is replaced by a later incoming sale date
//   - descriptive fields are replaced by non-empty incoming values
func Merge(existing, incoming []domain.Token) []domain.Token {
	merged := make(map[key]domain.Token, len(existing)+len(incoming))
	for _, list := range [][]domain.Token{existing, incoming} {
		for _, t := range list {
			k := keyOf(t)
			if cur, ok := merged[k]; ok {
				merged[k] = mergeToken(cur, t)
			} else {
				merged[k] = t
			}
		}
	}

	tokens := make([]domain.Token, 0, len(merged))
	for _, t := range merged {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b domain.Token) int {
		return cmp.Or(
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
		)
	})
	return tokens
}

func mergeToken(cur, in domain.Token) domain.Token {
	if !in.MintDate.IsZero() && (cur.MintDate.IsZero() || in.MintDate.Before(cur.MintDate)) {
		cur.MintCrypto = in.MintCrypto
		cur.MintPriceUSD = in.MintPriceUSD
		cur.MintPriceCrypto = in.MintPriceCrypto
		cur.MinterAddress = in.MinterAddress
		cur.MintDate = in.MintDate
	}

	if !in.LatestSaleDate.IsZero() && in.LatestSaleDate.After(cur.LatestSaleDate) {
		cur.LatestSaleCrypto = in.LatestSaleCrypto
		cur.LatestSaleDate = in.LatestSaleDate
		cur.LatestPriceUSD = in.LatestPriceUSD
		cur.LatestPriceCrypto = in.LatestPriceCrypto
	}

	cur.CollectionName = nonEmpty(cur.CollectionName, in.CollectionName)
	cur.Name = nonEmpty(cur.Name, in.Name)
	cur.Description = nonEmpty(cur.Description, in.Description)
	cur.URL = nonEmpty(cur.URL, in.URL)
	cur.PermanentLink = nonEmpty(cur.PermanentLink, in.PermanentLink)
	return cur
}

func nonEmpty(cur, in string) string {
	if strings.TrimSpace(in) == "" {
		return cur
	}
	return in
}

// DeriveFromTransactions estimates token records from sales. A token's first sale is
// its mint, sold by the minter unless the seller is the zero address, in which case
// the buyer minted it. The last sale fills the latest-sale group. Duplicates are skipped.
func DeriveFromTransactions(txs []domain.Transaction) []domain.Token {
	sales := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Duplicate {
			sales = append(sales, tx)
		}
	}
	slices.SortStableFunc(sales, func(a, b domain.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	tokens := make(map[key]domain.Token)
	for _, tx := range sales {
		k := key{CollectionID: tx.CollectionID, TokenID: tx.TokenID}
		t, ok := tokens[k]
		if !ok {
			minter := tx.Seller
			if strings.EqualFold(minter, domain.ETHEREUM_ZERO_ADDRESS) {
				minter = tx.Buyer
			}
			t = domain.Token{
				Category:        tx.Category,
				CollectionID:    tx.CollectionID,
				TokenID:         tx.TokenID,
				MintCrypto:      tx.CryptoSymbol,
				MintPriceUSD:    tx.ValueUSD,
				MintPriceCrypto: tx.ValueCrypto,
				MinterAddress:   minter,
				MintDate:        tx.Timestamp,
			}
		}
		t.LatestSaleCrypto = tx.CryptoSymbol
		t.LatestSaleDate = tx.Timestamp
		t.LatestPriceUSD = tx.ValueUSD
		t.LatestPriceCrypto = tx.ValueCrypto
		tokens[k] = t
	}

	return Merge(nil, slices.Collect(maps.Values(tokens)))
}
