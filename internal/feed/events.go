// Package feed defines the typed event records consumed by the indexer and
// the sources that produce them. Events arrive already decoded from raw
// chain logs; the feed preserves their original total order (block order,
// then intra-block position) and delivers each at most once.
package feed

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event type labels as they appear on the wire and in metrics.
const (
	TypeBlock           = "block"
	TypeOpen            = "open"
	TypeMake            = "make"
	TypeTake            = "take"
	TypeCancel          = "cancel"
	TypeClaim           = "claim"
	TypeTransfer        = "transfer"
	TypeRebalancerClaim = "rebalancer_claim"
	TypeUpdatePosition  = "update_position"
)

// Event is one decoded feed record.
type Event interface {
	Type() string
}

// Meta carries the chain position shared by every event.
type Meta struct {
	BlockNumber uint64      `json:"block_number"`
	Timestamp   int64       `json:"timestamp"` // block timestamp, unix seconds
	TxHash      common.Hash `json:"tx_hash"`
	LogIndex    uint        `json:"log_index"`
}

// BlockEvent marks a new block boundary on the feed.
type BlockEvent struct {
	Number    uint64 `json:"number"`
	Timestamp int64  `json:"timestamp"`
}

func (*BlockEvent) Type() string { return TypeBlock }

// OpenEvent announces a newly created book.
type OpenEvent struct {
	Meta
	BookID      *big.Int       `json:"book_id"`
	Base        common.Address `json:"base"`
	Quote       common.Address `json:"quote"`
	UnitSize    *big.Int       `json:"unit_size"`
	MakerPolicy int32          `json:"maker_policy"`
	TakerPolicy int32          `json:"taker_policy"`
	Hooks       common.Address `json:"hooks"`
}

func (*OpenEvent) Type() string { return TypeOpen }

// MakeEvent records a new resting order.
type MakeEvent struct {
	Meta
	BookID     *big.Int       `json:"book_id"`
	User       common.Address `json:"user"`
	Tick       int32          `json:"tick"`
	OrderIndex *big.Int       `json:"order_index"`
	Unit       *big.Int       `json:"unit"`
}

func (*MakeEvent) Type() string { return TypeMake }

// TakeEvent records a match consuming liquidity from the FIFO head at a tick.
type TakeEvent struct {
	Meta
	BookID *big.Int `json:"book_id"`
	Tick   int32    `json:"tick"`
	Unit   *big.Int `json:"unit"`
}

func (*TakeEvent) Type() string { return TypeTake }

// CancelEvent removes quantity from a still-open order.
type CancelEvent struct {
	Meta
	OrderID *big.Int `json:"order_id"`
	Unit    *big.Int `json:"unit"`
}

func (*CancelEvent) Type() string { return TypeCancel }

// ClaimEvent moves matched quantity from claimable to claimed.
type ClaimEvent struct {
	Meta
	OrderID *big.Int `json:"order_id"`
	Unit    *big.Int `json:"unit"`
}

func (*ClaimEvent) Type() string { return TypeClaim }

// TransferEvent changes an order's owner. Mints and burns (zero address on
// either side) are side effects of make/cancel/claim and are skipped.
type TransferEvent struct {
	Meta
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	TokenID *big.Int       `json:"token_id"`
}

func (*TransferEvent) Type() string { return TypeTransfer }

// RebalancerClaimEvent reports amounts the rebalancing strategy claimed
// from its two sub-book positions.
type RebalancerClaimEvent struct {
	Meta
	PoolKey        common.Hash `json:"pool_key"`
	ClaimedAmountA *big.Int    `json:"claimed_amount_a"`
	ClaimedAmountB *big.Int    `json:"claimed_amount_b"`
}

func (*RebalancerClaimEvent) Type() string { return TypeRebalancerClaim }

// UpdatePositionEvent reports a strategy position refresh with the oracle
// price it was computed against.
type UpdatePositionEvent struct {
	Meta
	PoolKey     common.Hash `json:"pool_key"`
	OraclePrice *big.Int    `json:"oracle_price"`
}

func (*UpdatePositionEvent) Type() string { return TypeUpdatePosition }

// Envelope is the wire form: a type tag plus the event payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals an envelope into its typed event.
func Decode(env Envelope) (Event, error) {
	var ev Event
	switch env.Type {
	case TypeBlock:
		ev = &BlockEvent{}
	case TypeOpen:
		ev = &OpenEvent{}
	case TypeMake:
		ev = &MakeEvent{}
	case TypeTake:
		ev = &TakeEvent{}
	case TypeCancel:
		ev = &CancelEvent{}
	case TypeClaim:
		ev = &ClaimEvent{}
	case TypeTransfer:
		ev = &TransferEvent{}
	case TypeRebalancerClaim:
		ev = &RebalancerClaimEvent{}
	case TypeUpdatePosition:
		ev = &UpdatePositionEvent{}
	default:
		return nil, fmt.Errorf("feed: unknown event type %q", env.Type)
	}
	if err := json.Unmarshal(env.Data, ev); err != nil {
		return nil, fmt.Errorf("feed: decode %s event: %w", env.Type, err)
	}
	if err := checkRequired(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// checkRequired rejects envelopes whose payload omitted a numeric field the
// handlers dereference. A missing field is stream corruption and surfaces
// as a decode error, same as malformed JSON.
func checkRequired(ev Event) error {
	var fields map[string]*big.Int
	switch ev := ev.(type) {
	case *OpenEvent:
		fields = map[string]*big.Int{"book_id": ev.BookID, "unit_size": ev.UnitSize}
	case *MakeEvent:
		fields = map[string]*big.Int{"book_id": ev.BookID, "order_index": ev.OrderIndex, "unit": ev.Unit}
	case *TakeEvent:
		fields = map[string]*big.Int{"book_id": ev.BookID, "unit": ev.Unit}
	case *CancelEvent:
		fields = map[string]*big.Int{"order_id": ev.OrderID, "unit": ev.Unit}
	case *ClaimEvent:
		fields = map[string]*big.Int{"order_id": ev.OrderID, "unit": ev.Unit}
	case *TransferEvent:
		fields = map[string]*big.Int{"token_id": ev.TokenID}
	case *RebalancerClaimEvent:
		fields = map[string]*big.Int{"claimed_amount_a": ev.ClaimedAmountA, "claimed_amount_b": ev.ClaimedAmountB}
	case *UpdatePositionEvent:
		fields = map[string]*big.Int{"oracle_price": ev.OraclePrice}
	}
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("feed: %s event missing %s", ev.Type(), name)
		}
	}
	return nil
}

// Encode wraps a typed event in its envelope.
func Encode(ev Event) (Envelope, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("feed: encode %s event: %w", ev.Type(), err)
	}
	return Envelope{Type: ev.Type(), Data: data}, nil
}
