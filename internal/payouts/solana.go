package payouts

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// Client settles approved withdrawals as SOL transfers from the payout wallet
type Client struct {
	rpcClient       *rpc.Client
	network         string
	payoutWallet    *solana.Wallet
	lamportsPerUnit decimal.Decimal
}

// NewClient creates a payout client for the given network. lamportsPerUnit is
// the conversion rate from internal currency units to lamports.
func NewClient(network, privateKey string, lamportsPerUnit int64) *Client {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = "https://api.mainnet-beta.solana.com"
	case "devnet":
		rpcURL = "https://api.devnet.solana.com"
	case "testnet":
		rpcURL = "https://api.testnet.solana.com"
	default:
		rpcURL = "https://api.devnet.solana.com"
	}

	client := &Client{
		rpcClient:       rpc.New(rpcURL),
		network:         network,
		lamportsPerUnit: decimal.NewFromInt(lamportsPerUnit),
	}

	if privateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
		if err != nil {
			log.Printf("Warning: Failed to load payout wallet: %v", err)
		} else {
			client.payoutWallet = wallet
			log.Printf("Payout wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// ValidateAddress checks that addr is a well-formed Solana public key
func ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}
	if len(raw) != solana.PublicKeyLength {
		return fmt.Errorf("invalid address length: %d", len(raw))
	}
	return nil
}

// Pay transfers the lamport equivalent of units to recipient and returns the
// transaction signature
func (c *Client) Pay(ctx context.Context, recipient string, units int64) (string, error) {
	if c.payoutWallet == nil {
		return "", fmt.Errorf("payout wallet not configured")
	}
	if units <= 0 {
		return "", fmt.Errorf("payout amount must be positive, got %d", units)
	}
	if err := ValidateAddress(recipient); err != nil {
		return "", err
	}

	recipientKey, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	lamports := decimal.NewFromInt(units).Mul(c.lamportsPerUnit).IntPart()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				uint64(lamports),
				c.payoutWallet.PublicKey(),
				recipientKey,
			).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(c.payoutWallet.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.payoutWallet.PublicKey()) {
			return &c.payoutWallet.PrivateKey
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}
