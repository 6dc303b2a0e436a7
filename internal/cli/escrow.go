package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vietddude/suiwork/internal/control"
	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/escrow"
	"github.com/vietddude/suiwork/internal/wallet"
)

var (
	createJobID      uint64
	createClient     string
	createFreelancer string
	createAmount     float64
)

var escrowCmd = &cobra.Command{
	Use:   "escrow",
	Short: "Create and settle escrows",
}

var escrowCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an escrow for a job",
	Run: func(cmd *cobra.Command, args []string) {
		submit("create", func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error) {
			return s.CreateEscrow(ctx, escrow.CreateParams{
				JobID:      createJobID,
				Client:     createClient,
				Freelancer: createFreelancer,
				Amount:     createAmount,
			})
		})
	},
}

var escrowLockCmd = &cobra.Command{
	Use:   "lock [escrow_id] [amount_sui]",
	Short: "Lock funds from the gas coin into an escrow",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := domain.ParseSUI(args[1])
		if err != nil {
			fmt.Printf("Invalid amount: %v\n", err)
			os.Exit(1)
		}
		submit("lock", func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error) {
			return s.LockFunds(ctx, args[0], amount)
		})
	},
}

var escrowReleaseCmd = &cobra.Command{
	Use:   "release [escrow_id] [freelancer]",
	Short: "Release escrowed funds to the freelancer",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		submit("release", func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error) {
			return s.ReleaseFunds(ctx, args[0], args[1])
		})
	},
}

var escrowDisputeCmd = &cobra.Command{
	Use:   "dispute [escrow_id]",
	Short: "Raise a dispute on an escrow",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		submit("dispute", func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error) {
			return s.RaiseDispute(ctx, args[0])
		})
	},
}

var escrowRefundCmd = &cobra.Command{
	Use:   "refund [escrow_id] [client]",
	Short: "Refund a disputed escrow to the client",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		submit("refund", func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error) {
			return s.DisputeRefund(ctx, args[0], args[1])
		})
	},
}

var escrowInfoCmd = &cobra.Command{
	Use:   "info [escrow_id]",
	Short: "Print the escrow object",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := startApp(ctx)
		defer stopApp(app)

		info, err := app.Escrow().EscrowInfo(ctx, args[0])
		if err != nil {
			fail(app, "Failed to read escrow", err)
		}
		out, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	escrowCreateCmd.Flags().Uint64Var(&createJobID, "job", 0, "on-chain job id")
	escrowCreateCmd.Flags().StringVar(&createClient, "client", "", "client address")
	escrowCreateCmd.Flags().StringVar(&createFreelancer, "freelancer", "", "freelancer address")
	escrowCreateCmd.Flags().Float64Var(&createAmount, "amount", 0, "escrow amount in SUI")
	for _, name := range []string{"job", "client", "freelancer", "amount"} {
		_ = escrowCreateCmd.MarkFlagRequired(name)
	}

	escrowCmd.AddCommand(escrowCreateCmd, escrowLockCmd, escrowReleaseCmd,
		escrowDisputeCmd, escrowRefundCmd, escrowInfoCmd)
	rootCmd.AddCommand(escrowCmd)
}

// submit connects the wallet, runs op and prints the receipt.
func submit(action string, op func(ctx context.Context, s *escrow.Service) (*wallet.Receipt, error)) {
	ctx := context.Background()
	app := connectedApp(ctx)
	defer stopApp(app)

	receipt, err := op(ctx, app.Escrow())
	if err != nil {
		fail(app, "Escrow "+action+" failed", err)
	}
	printReceipt(app, receipt)
}

func printReceipt(app *control.App, r *wallet.Receipt) {
	s := app.Wallet().Session()
	fmt.Printf("digest:   %s\n", r.Digest)
	fmt.Printf("gas used: %s MIST\n", strconv.FormatUint(r.GasUsed, 10))
	fmt.Printf("balance:  %.9f SUI\n", s.Balance)
}
