package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the restored wallet and clear the cached session",
	Run:   runDisconnect,
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := startApp(ctx)
	defer stopApp(app)

	prev := app.Wallet().Session()
	if err := app.Wallet().Disconnect(ctx); err != nil {
		fail(app, "Failed to disconnect wallet", err)
	}
	if prev.Connected {
		fmt.Printf("Disconnected %s (%s)\n", prev.Address, prev.Adapter)
		return
	}
	fmt.Println("No wallet session to clear")
}
