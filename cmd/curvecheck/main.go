// cmd/curvecheck/main.go
//
// Inspects the bonding curve of a pump.fun token: reserves, price, progress
// and graduation status.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/curvebot/pump-sniper/internal/chain"
	"github.com/curvebot/pump-sniper/internal/pumpfun"
)

func main() {
	rpcURL := flag.String("rpc", "https://api.mainnet-beta.solana.com", "RPC endpoint")
	mintStr := flag.String("mint", "", "token mint address")
	decimals := flag.Uint("decimals", 6, "token decimals")
	flag.Parse()

	if *mintStr == "" {
		fmt.Fprintln(os.Stderr, "usage: curvecheck -mint <address> [-rpc <url>] [-decimals <n>]")
		os.Exit(2)
	}

	if err := run(*rpcURL, *mintStr, uint8(*decimals)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(rpcURL, mintStr string, decimals uint8) error {
	mint, err := solana.PublicKeyFromBase58(mintStr)
	if err != nil {
		return fmt.Errorf("invalid mint address: %w", err)
	}

	curve, _, err := pumpfun.DeriveBondingCurve(mint, pumpfun.ProgramID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := chain.NewClient(rpcURL, zap.NewNop())
	data, err := client.GetAccountDataBytes(ctx, curve)
	if err != nil {
		return fmt.Errorf("failed to fetch curve account %s: %w", curve, err)
	}

	state, err := pumpfun.DecodeCurveState(data)
	if err != nil {
		return err
	}

	fmt.Printf("mint:                  %s\n", mint)
	fmt.Printf("bonding curve:         %s\n", curve)
	fmt.Printf("virtual token reserves: %d\n", state.VirtualTokenReserves)
	fmt.Printf("virtual sol reserves:   %d\n", state.VirtualSolReserves)
	fmt.Printf("real token reserves:    %d\n", state.RealTokenReserves)
	fmt.Printf("real sol reserves:      %d\n", state.RealSolReserves)
	fmt.Printf("token total supply:     %d\n", state.TokenTotalSupply)
	fmt.Printf("progress:               %.2f%%\n", pumpfun.Progress(state)*100)

	if state.Complete {
		fmt.Println("status:                 graduated (trading moved off the curve)")
		return nil
	}

	price, err := pumpfun.SpotPrice(state, decimals)
	if err != nil {
		return err
	}
	fmt.Printf("price:                  %.10f SOL\n", price)
	return nil
}
