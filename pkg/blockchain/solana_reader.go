package blockchain

import (
	"context"
	"fmt"
	"time"

	"portfolio_checker/internal/domain/entity"
	"portfolio_checker/internal/port"
	"portfolio_checker/pkg/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// solanaBalanceReader implements port.BalanceReader over a Solana JSON-RPC node.
type solanaBalanceReader struct {
	rpcClient *rpc.Client
	timeout   time.Duration
	logger    *zap.Logger
}

// NewSolanaBalanceReader creates a new instance of solanaBalanceReader.
func NewSolanaBalanceReader(rpcURL string, timeout time.Duration, logger *zap.Logger) port.BalanceReader {
	return &solanaBalanceReader{
		rpcClient: rpc.New(rpcURL),
		timeout:   timeout,
		logger:    logger.Named("SolanaBalanceReader"),
	}
}

// GetNativeBalance implements the port.BalanceReader interface. The raw
// lamport balance is converted with the fixed 10^9 divisor.
func (r *solanaBalanceReader) GetNativeBalance(ctx context.Context, walletAddress string) (float64, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", entity.ErrInvalidAddress, walletAddress, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	out, err := r.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentFinalized)
	r.observe(start, err)
	if err != nil {
		r.logger.Error("Failed to get native balance", zap.String("wallet", walletAddress), zap.Error(err))
		return 0, fmt.Errorf("%w: getBalance for %s: %v", entity.ErrReadFailed, walletAddress, err)
	}

	return float64(out.Value) / entity.LamportsPerSOL, nil
}

// GetTokenBalances implements the port.BalanceReader interface. One entry is
// returned per token account owned by the wallet, zero balances dropped.
func (r *solanaBalanceReader) GetTokenBalances(ctx context.Context, walletAddress string) ([]entity.TokenBalance, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", entity.ErrInvalidAddress, walletAddress, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	out, err := r.rpcClient.GetTokenAccountsByOwner(
		ctx,
		pubKey,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentFinalized,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	r.observe(start, err)
	if err != nil {
		r.logger.Error("Failed to get token accounts", zap.String("wallet", walletAddress), zap.Error(err))
		return nil, fmt.Errorf("%w: getTokenAccountsByOwner for %s: %v", entity.ErrReadFailed, walletAddress, err)
	}

	balances := make([]entity.TokenBalance, 0, len(out.Value))
	for _, keyed := range out.Value {
		if keyed == nil || keyed.Account.Data == nil {
			continue
		}

		var parsed parsedTokenAccountData
		if err := json.Unmarshal(keyed.Account.Data.GetRawJSON(), &parsed); err != nil {
			r.logger.Warn("Skipping token account with unparseable data",
				zap.String("wallet", walletAddress),
				zap.String("account", keyed.Pubkey.String()),
				zap.Error(err))
			continue
		}

		amount := parsed.Parsed.Info.TokenAmount.UIAmount
		if amount == nil || *amount <= 0 {
			continue
		}
		balances = append(balances, entity.TokenBalance{
			Mint:    parsed.Parsed.Info.Mint,
			Balance: *amount,
		})
	}

	r.logger.Debug("Fetched token balances",
		zap.String("wallet", walletAddress),
		zap.Int("accountCount", len(out.Value)),
		zap.Int("positiveCount", len(balances)))
	return balances, nil
}

func (r *solanaBalanceReader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *solanaBalanceReader) observe(start time.Time, err error) {
	metrics.UpstreamRequestDuration.WithLabelValues("solana_rpc").Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("solana_rpc", outcome).Inc()
}

// parsedTokenAccountData mirrors the jsonParsed encoding of an SPL token
// account, reduced to the fields the reader needs.
type parsedTokenAccountData struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string `json:"type"`
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount         string   `json:"amount"`
				Decimals       uint8    `json:"decimals"`
				UIAmount       *float64 `json:"uiAmount"`
				UIAmountString string   `json:"uiAmountString"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}
