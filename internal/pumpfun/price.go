// internal/pumpfun/price.go
package pumpfun

import (
	"errors"
	"fmt"
	"math"
)

const (
	// LamportsPerSOL is the number of lamports in one SOL.
	LamportsPerSOL = 1_000_000_000

	solDecimals = 9
)

// ComputeErrorKind classifies pricing failures.
type ComputeErrorKind int

const (
	// ComputeInvalidReserves means a virtual reserve was zero; the curve is
	// either graduated or the account is not usable for pricing.
	ComputeInvalidReserves ComputeErrorKind = iota
	// ComputeInvalidSlippage means the slippage fraction was outside [0, 1).
	ComputeInvalidSlippage
)

// ComputeError is a terminal pricing failure; the caller must abort the
// current trade intent rather than retry.
type ComputeError struct {
	Kind ComputeErrorKind
}

func (e *ComputeError) Error() string {
	switch e.Kind {
	case ComputeInvalidReserves:
		return "invalid reserve state: virtual reserves must be greater than zero"
	case ComputeInvalidSlippage:
		return "invalid slippage: must be in [0, 1)"
	default:
		return "price computation failed"
	}
}

// IsComputeError reports whether err is a pricing failure of the given kind.
func IsComputeError(err error, kind ComputeErrorKind) bool {
	var ce *ComputeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}

// SpotPrice returns the current token price in SOL per whole token:
// (virtualSolReserves / 10^9) / (virtualTokenReserves / 10^decimals).
// Computed in float64 like the rest of the pricing path; the rounding bound
// is recorded in DESIGN.md.
func SpotPrice(state *CurveState, tokenDecimals uint8) (float64, error) {
	if state.VirtualTokenReserves == 0 || state.VirtualSolReserves == 0 {
		return 0, &ComputeError{Kind: ComputeInvalidReserves}
	}

	virtualSol := float64(state.VirtualSolReserves) / math.Pow10(solDecimals)
	virtualTokens := float64(state.VirtualTokenReserves) / math.Pow10(int(tokenDecimals))
	return virtualSol / virtualTokens, nil
}

// BuyQuote is the amount conversion for a buy intent: how many tokens a SOL
// amount buys at the quoted price, and the worst acceptable cost in lamports.
type BuyQuote struct {
	TokenAmount     float64 // whole tokens expected out
	MaxCostLamports uint64  // ceiling on what the buy may spend
}

// QuoteBuy converts a SOL spend into a token amount at price and bounds the
// cost at floor(solAmount * 1e9 * (1 + slippage)) lamports. Zero slippage
// leaves the bound at the exact lamport spend.
func QuoteBuy(solAmount, price, slippage float64) (BuyQuote, error) {
	if slippage < 0 || slippage >= 1 {
		return BuyQuote{}, &ComputeError{Kind: ComputeInvalidSlippage}
	}
	if price <= 0 {
		return BuyQuote{}, fmt.Errorf("non-positive price %g", price)
	}

	lamports := math.Floor(solAmount * LamportsPerSOL)
	return BuyQuote{
		TokenAmount:     solAmount / price,
		MaxCostLamports: uint64(math.Floor(lamports * (1 + slippage))),
	}, nil
}

// SellQuote is the amount conversion for a sell intent: the minimum lamport
// proceeds acceptable for a raw token amount.
type SellQuote struct {
	MinSolOutputLamports uint64
}

// QuoteSell bounds sell proceeds at
// floor(tokens * price * (1 - slippage) * 1e9) lamports, where tokens is the
// raw amount scaled down by the mint's decimals.
func QuoteSell(tokenAmountRaw uint64, tokenDecimals uint8, price, slippage float64) (SellQuote, error) {
	if slippage < 0 || slippage >= 1 {
		return SellQuote{}, &ComputeError{Kind: ComputeInvalidSlippage}
	}
	if price <= 0 {
		return SellQuote{}, fmt.Errorf("non-positive price %g", price)
	}

	tokens := float64(tokenAmountRaw) / math.Pow10(int(tokenDecimals))
	minSol := tokens * price * (1 - slippage)
	return SellQuote{
		MinSolOutputLamports: uint64(math.Floor(minSol * LamportsPerSOL)),
	}, nil
}

// RawTokenAmount converts a whole-token amount into the mint's raw units.
func RawTokenAmount(tokens float64, tokenDecimals uint8) uint64 {
	return uint64(math.Floor(tokens * math.Pow10(int(tokenDecimals))))
}

// Progress reports how much of the curve's sellable supply has been bought,
// in [0, 1]. Used by the curve inspector.
func Progress(state *CurveState) float64 {
	if state.TokenTotalSupply == 0 {
		return 0
	}
	sold := float64(state.TokenTotalSupply) - float64(state.RealTokenReserves)
	if sold < 0 {
		return 0
	}
	return sold / float64(state.TokenTotalSupply)
}
