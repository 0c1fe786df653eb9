// Package orderid packs and unpacks the composite on-chain order identifier.
//
// Layout, low to high bits:
//
//	bits 0–39   order sequence index
//	bits 40–63  tick, 24-bit two's complement
//	bits 64+    book id
//
// Only the book id is ever recovered from an id; tick and index are carried
// on the order record itself.
package orderid

import "math/big"

var (
	two40 = new(big.Int).Lsh(big.NewInt(1), 40)
	two64 = new(big.Int).Lsh(big.NewInt(1), 64)
)

// Encode builds the order id for (book, tick, sequence index). Ticks outside
// 24 signed bits truncate silently; callers own that boundary.
func Encode(bookID *big.Int, tick int32, orderIndex *big.Int) *big.Int {
	tickU24 := uint32(tick) << 8 >> 8 // low 24 bits of the two's complement

	id := new(big.Int).Mul(big.NewInt(int64(tickU24)), two40)
	id.Add(id, orderIndex)
	id.Add(id, new(big.Int).Mul(bookID, two64))
	return id
}

// DecodeBookID recovers the owning book id from an order id.
func DecodeBookID(orderID *big.Int) *big.Int {
	return new(big.Int).Div(orderID, two64)
}
