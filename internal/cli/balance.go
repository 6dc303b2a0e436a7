package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/suiwork/internal/core/domain"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Connect the wallet and print its SUI balance",
	Run:   runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := connectedApp(ctx)
	defer stopApp(app)

	balance, err := app.Wallet().RefreshBalance(ctx)
	if err != nil {
		fail(app, "Failed to fetch balance", err)
	}
	s := app.Wallet().Session()
	mist, err := domain.ToMist(balance)
	if err != nil {
		fail(app, "Failed to format balance", err)
	}
	fmt.Printf("%s (%s): %s SUI\n", s.Address, s.Adapter, domain.FormatSUI(mist))
}
