package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressID is the canonical entity id for an address: lowercase hex.
func AddressID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Entity id builders. Ids are plain strings so every store backend can key
// records the same way.

// DepthID keys both Depth and OrderIndex records for one price level.
func DepthID(bookID string, tick int32) string {
	return bookID + "-" + strconv.FormatInt(int64(tick), 10)
}

// MarketCode names a market by its token pair, e.g. "0xabc…/0xdef…".
func MarketCode(base, quote *Token) string {
	return base.ID + "/" + quote.ID
}

// ChartLogID keys one OHLC bar.
func ChartLogID(base, quote *Token, intervalType string, bucketStart int64) string {
	return fmt.Sprintf("%s-%s-%d", MarketCode(base, quote), intervalType, bucketStart)
}

// PoolBucketID keys PoolVolume and PoolSnapshot records.
func PoolBucketID(poolKey string, intervalType string, bucketStart int64) string {
	return fmt.Sprintf("%s-%s-%d", poolKey, intervalType, bucketStart)
}

// PoolSpreadProfitID keys one spread profit accumulation bucket.
func PoolSpreadProfitID(intervalType string, bucketStart int64) string {
	return fmt.Sprintf("%s-%d", intervalType, bucketStart)
}

// LatestID is the id of singleton records (LatestPoolSpread, LatestBlock).
const LatestID = "latest"
