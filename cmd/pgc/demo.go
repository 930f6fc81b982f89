package main

import (
	"fmt"

	pgc "github.com/MixinNetwork/pgc-go"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	demoDeposit  uint64
	demoTransfer uint64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Deposit, transfer and burn between two in-memory accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := newParams()
		if err != nil {
			return err
		}
		vault := pgc.NewMemoryVault()
		ledger := pgc.NewLedger(params, nil, vault,
			pgc.WithLogger(logger),
			pgc.WithOptimizedVerifier(*config.OptimizedVerify),
		)
		alice, bob := pgc.NewKeyPair(params), pgc.NewKeyPair(params)

		if _, err := ledger.Deposit(alice.Public, demoDeposit); err != nil {
			return err
		}
		acct, err := ledger.Account(alice.Public)
		if err != nil {
			return err
		}
		tp, err := pgc.ProveTransfer(params, alice, acct.Balance, demoDeposit, acct.Nonce, []pgc.Payment{{Receiver: bob.Public, Amount: demoTransfer}})
		if err != nil {
			return err
		}
		points, scalars, lr := tp.Encode()
		if _, err := ledger.AggregatedTransfer(points, scalars, lr); err != nil {
			return err
		}

		receiver := common.HexToAddress("0x00000000000000000000000000000000000000a1")
		for _, kp := range []*pgc.KeyPair{alice, bob} {
			acct, err := ledger.Account(kp.Public)
			if err != nil {
				return err
			}
			amount, err := pgc.Decrypt(params, acct.Balance, kp.Secret, demoDeposit)
			if err != nil {
				return err
			}
			burn, err := pgc.ProveBurn(params, kp, acct.Balance, amount, receiver, acct.Nonce)
			if err != nil {
				return err
			}
			if _, err := ledger.Burn(receiver, amount, burn.Points(), burn.Equality.Z); err != nil {
				return err
			}
			logger.Info("burned", zap.String("account", acct.Code()), zap.Uint64("amount", amount))
		}
		fmt.Printf("released %d to %s\n", vault.Released(receiver), receiver.Hex())
		return nil
	},
}

func init() {
	demoCmd.Flags().Uint64Var(&demoDeposit, "deposit", 100, "amount deposited to the sender")
	demoCmd.Flags().Uint64Var(&demoTransfer, "transfer", 40, "amount transferred to the receiver")
}
