package events

import (
	"strconv"

	"teranium/core/types"
	"teranium/crypto"
)

const TypeSwapExecuted = "swap.executed"

// SwapExecuted records both legs of an oracle-priced swap together with the
// observation the pricing was derived from.
type SwapExecuted struct {
	User        crypto.Address
	BaseVault   crypto.Address
	StableVault crypto.Address
	FromMint    crypto.Address
	ToMint      crypto.Address
	AmountIn    uint64
	AmountOut   uint64
	Price       int64
	Conf        uint64
	Expo        int32
	PublishTime int64
	Direction   string
}

func (SwapExecuted) EventType() string { return TypeSwapExecuted }

func (e SwapExecuted) Event() *types.Event {
	return &types.Event{
		Type: TypeSwapExecuted,
		Attributes: map[string]string{
			"user":        e.User.String(),
			"baseVault":   e.BaseVault.String(),
			"stableVault": e.StableVault.String(),
			"fromMint":    e.FromMint.String(),
			"toMint":      e.ToMint.String(),
			"amountIn":    strconv.FormatUint(e.AmountIn, 10),
			"amountOut":   strconv.FormatUint(e.AmountOut, 10),
			"price":       strconv.FormatInt(e.Price, 10),
			"conf":        strconv.FormatUint(e.Conf, 10),
			"expo":        strconv.FormatInt(int64(e.Expo), 10),
			"publishTime": strconv.FormatInt(e.PublishTime, 10),
			"direction":   e.Direction,
		},
	}
}
