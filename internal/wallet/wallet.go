// internal/wallet/wallet.go
package wallet

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet wraps a keypair with transaction signing and a cache of derived
// associated token accounts. Safe for concurrent use.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey

	mu       sync.Mutex
	ataCache map[string]solana.PublicKey
}

// New builds a wallet from a base58-encoded 64-byte ed25519 keypair.
func New(privateKeyBase58 string) (*Wallet, error) {
	raw, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key length: %d bytes, expected 64", len(raw))
	}

	key := solana.PrivateKey(raw)
	return &Wallet{
		PrivateKey: key,
		PublicKey:  key.PublicKey(),
		ataCache:   make(map[string]solana.PublicKey),
	}, nil
}

// NewRandom generates a throwaway wallet. Used by tests and dry runs.
func NewRandom() *Wallet {
	acc := solana.NewWallet()
	return &Wallet{
		PrivateKey: acc.PrivateKey,
		PublicKey:  acc.PublicKey(),
		ataCache:   make(map[string]solana.PublicKey),
	}
}

// SignTransaction signs tx with the wallet's key in place.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// ATA returns the wallet's associated token account for mint, deriving it at
// most once per mint.
func (w *Wallet) ATA(mint solana.PublicKey) (solana.PublicKey, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := mint.String()
	if ata, ok := w.ataCache[key]; ok {
		return ata, nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token account: %w", err)
	}
	w.ataCache[key] = ata
	return ata, nil
}

// CreateATAInstruction builds an idempotent create instruction for the
// wallet's associated token account of mint. Idempotent creation keeps
// retries safe when a previous attempt landed but its confirmation was lost.
func (w *Wallet) CreateATAInstruction(mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := w.ATA(mint)
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(w.PublicKey, true, true),
		solana.NewAccountMeta(ata, true, false),
		solana.NewAccountMeta(w.PublicKey, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	// Instruction 1 is CreateIdempotent.
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, metas, []byte{1}), nil
}

func (w *Wallet) String() string {
	return w.PublicKey.String()
}
