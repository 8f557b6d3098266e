package simulator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algotrendy/strategy-validator/pkg/types"
)

// Side is the direction of a position.
type Side int8

const (
	SideLong Side = iota
	SideShort
)

func (s Side) String() string {
	if s == SideShort {
		return "short"
	}
	return "long"
}

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitSignalReversal ExitReason = "signal_reversal"
	ExitEndOfWindow    ExitReason = "end_of_window"
)

// Trade is one completed round trip. Immutable once created.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Side       Side
	Quantity   float64
	PnL        float64
	PnLPercent float64
	Commission float64
	ExitReason ExitReason
	Duration   time.Duration
}

// EquityPoint is the account snapshot after processing one bar.
// Equity == Cash + PositionValue holds at every point.
type EquityPoint struct {
	Timestamp     time.Time
	Equity        float64
	Cash          float64
	PositionValue float64
	// Drawdown is (equity - peak) / peak, always <= 0.
	Drawdown float64
}

// SimConfig is the cost model for a simulation run.
type SimConfig struct {
	InitialCapital float64
	CommissionRate float64
	SlippageRate   float64
	// Utilization is the fraction of cash committed on entry.
	Utilization float64
	// ShortEnabled opens a short on SignalFlat while flat instead of
	// staying in cash.
	ShortEnabled bool
}

// DefaultSimConfig mirrors the standard validation cost model.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		InitialCapital: 10000,
		CommissionRate: 0.001,
		SlippageRate:   0.0005,
		Utilization:    0.95,
	}
}

func (c SimConfig) validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.4f", c.InitialCapital)
	}
	if c.CommissionRate < 0 || c.CommissionRate >= 1 {
		return fmt.Errorf("commission rate must be in [0,1), got %.4f", c.CommissionRate)
	}
	if c.SlippageRate < 0 || c.SlippageRate >= 1 {
		return fmt.Errorf("slippage rate must be in [0,1), got %.4f", c.SlippageRate)
	}
	if c.Utilization <= 0 || c.Utilization > 1 {
		return fmt.Errorf("utilization must be in (0,1], got %.4f", c.Utilization)
	}
	return nil
}

// position is the single open position the simulator tracks. No pyramiding.
type position struct {
	side      Side
	quantity  float64
	entry     float64
	entryTime time.Time
	// commission paid on the entry leg, charged against PnL on exit
	entryCommission float64
}

// Simulate replays bars against an aligned signal series and returns the
// trade ledger plus one equity point per bar. Pure function over its inputs.
//
// Slippage always moves the fill against the trader: buys fill at
// close*(1+slippage), sells at close*(1-slippage).
func Simulate(bars []types.PriceBar, signals []types.Signal, cfg SimConfig) ([]Trade, []EquityPoint, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	if len(bars) == 0 {
		return nil, nil, fmt.Errorf("no bars to simulate")
	}
	if len(signals) != len(bars) {
		return nil, nil, fmt.Errorf("signal length %d does not match bar length %d", len(signals), len(bars))
	}

	var (
		trades []Trade
		curve  = make([]EquityPoint, 0, len(bars))
		cash   = cfg.InitialCapital
		pos    *position
		peak   = cfg.InitialCapital
	)

	for i, bar := range bars {
		sig := signals[i]

		if sig != types.SignalHold {
			switch {
			case pos == nil && sig == types.SignalLong:
				pos, cash = openPosition(SideLong, bar, cash, cfg)
			case pos == nil && sig == types.SignalFlat && cfg.ShortEnabled:
				pos, cash = openPosition(SideShort, bar, cash, cfg)
			case pos != nil && reversed(pos.side, sig):
				var t Trade
				t, cash = closePosition(pos, bar, cash, cfg, ExitSignalReversal)
				trades = append(trades, t)
				pos = nil
				// A reversal both exits and re-enters when shorting is on.
				if cfg.ShortEnabled {
					entrySide := SideLong
					if sig == types.SignalFlat {
						entrySide = SideShort
					}
					pos, cash = openPosition(entrySide, bar, cash, cfg)
				}
			}
		}

		equity := cash + positionValue(pos, bar.Close)
		if equity > peak {
			peak = equity
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (equity - peak) / peak
		}
		curve = append(curve, EquityPoint{
			Timestamp:     bar.Timestamp,
			Equity:        equity,
			Cash:          cash,
			PositionValue: positionValue(pos, bar.Close),
			Drawdown:      drawdown,
		})
	}

	// Force-close whatever is still open at the final bar.
	if pos != nil {
		last := bars[len(bars)-1]
		var t Trade
		t, cash = closePosition(pos, last, cash, cfg, ExitEndOfWindow)
		trades = append(trades, t)
		final := &curve[len(curve)-1]
		final.Cash = cash
		final.PositionValue = 0
		final.Equity = cash
		if final.Equity > peak {
			peak = final.Equity
		}
		if peak > 0 {
			final.Drawdown = (final.Equity - peak) / peak
		}
	}

	return trades, curve, nil
}

func reversed(side Side, sig types.Signal) bool {
	return (side == SideLong && sig == types.SignalFlat) ||
		(side == SideShort && sig == types.SignalLong)
}

func positionValue(pos *position, close float64) float64 {
	if pos == nil {
		return 0
	}
	if pos.side == SideShort {
		return -pos.quantity * close
	}
	return pos.quantity * close
}

// openPosition sizes and opens a position at the slipped close. Returns the
// untouched (nil, cash) pair when there is not enough cash to cover the
// order plus commission; an unaffordable entry is skipped, not an error.
func openPosition(side Side, bar types.PriceBar, cash float64, cfg SimConfig) (*position, float64) {
	fill := slippedPrice(bar.Close, side == SideLong, cfg.SlippageRate)
	quantity := (cash * cfg.Utilization) / fill
	if quantity <= 0 {
		return nil, cash
	}

	if side == SideLong {
		cost := quantity * fill
		commission := cost * cfg.CommissionRate
		if cash < cost+commission {
			log.Debug().Float64("cost", cost+commission).Float64("cash", cash).Msg("entry skipped: insufficient cash")
			return nil, cash
		}
		cash -= cost + commission
		return &position{side: side, quantity: quantity, entry: fill, entryTime: bar.Timestamp, entryCommission: commission}, cash
	}

	// Short entry is a sell: proceeds are credited, exposure is negative.
	proceeds := quantity * fill
	commission := proceeds * cfg.CommissionRate
	if cash < commission {
		return nil, cash
	}
	cash += proceeds - commission
	return &position{side: side, quantity: quantity, entry: fill, entryTime: bar.Timestamp, entryCommission: commission}, cash
}

func closePosition(pos *position, bar types.PriceBar, cash float64, cfg SimConfig, reason ExitReason) (Trade, float64) {
	// Closing a long is a sell, closing a short is a buy.
	fill := slippedPrice(bar.Close, pos.side == SideShort, cfg.SlippageRate)

	var pnl, exitCommission float64
	if pos.side == SideLong {
		proceeds := pos.quantity * fill
		exitCommission = proceeds * cfg.CommissionRate
		cash += proceeds - exitCommission
		pnl = (fill-pos.entry)*pos.quantity - pos.entryCommission - exitCommission
	} else {
		cost := pos.quantity * fill
		exitCommission = cost * cfg.CommissionRate
		cash -= cost + exitCommission
		pnl = (pos.entry-fill)*pos.quantity - pos.entryCommission - exitCommission
	}

	notional := pos.entry * pos.quantity
	pnlPercent := 0.0
	if notional > 0 {
		pnlPercent = pnl / notional * 100
	}

	return Trade{
		EntryTime:  pos.entryTime,
		ExitTime:   bar.Timestamp,
		EntryPrice: pos.entry,
		ExitPrice:  fill,
		Side:       pos.side,
		Quantity:   pos.quantity,
		PnL:        pnl,
		PnLPercent: pnlPercent,
		Commission: pos.entryCommission + exitCommission,
		ExitReason: reason,
		Duration:   bar.Timestamp.Sub(pos.entryTime),
	}, cash
}

// slippedPrice moves the market price against the trader: up for buys,
// down for sells.
func slippedPrice(market float64, buying bool, rate float64) float64 {
	if buying {
		return market * (1 + rate)
	}
	return market * (1 - rate)
}
