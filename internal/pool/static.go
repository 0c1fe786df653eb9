package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StaticStrategy is a fixed-position StrategyView for replays and tests.
type StaticStrategy struct {
	TickA int32
	TickB int32
}

func (s StaticStrategy) Position(common.Hash) (int32, int32, error) {
	return s.TickA, s.TickB, nil
}

// StaticLiquidity is a fixed-composition LiquidityView for replays and tests.
type StaticLiquidity struct {
	Pool   Liquidity
	Supply *big.Int
}

func (s StaticLiquidity) Liquidity(common.Hash) (Liquidity, error) {
	return s.Pool, nil
}

func (s StaticLiquidity) TotalSupply(*big.Int) (*big.Int, error) {
	if s.Supply == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(s.Supply), nil
}
