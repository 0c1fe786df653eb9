package chain

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/openclob/book-indexer/internal/model"
)

// TokenSource fetches ERC20-style metadata for a token address. The
// RPC-backed implementation lives with the host; the indexer only needs
// something that answers for addresses it has never seen.
type TokenSource interface {
	TokenMetadata(addr common.Address) model.Token
}

// FallbackTokenSource answers without any network access: the zero address
// is the native token, everything else gets placeholder metadata with 18
// decimals. Matches the upstream behavior for tokens whose metadata calls
// revert.
type FallbackTokenSource struct{}

func (FallbackTokenSource) TokenMetadata(addr common.Address) model.Token {
	if addr == (common.Address{}) {
		return model.Token{ID: model.AddressID(addr), Symbol: "ETH", Name: "Ether", Decimals: 18}
	}
	return model.Token{ID: model.AddressID(addr), Symbol: "unknown", Name: "unknown", Decimals: 18}
}
