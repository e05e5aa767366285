package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkBackendCmd = &cobra.Command{
	Use:   "check-backend",
	Short: "Test the quotation backend connection",
	Long: `Test the connection to the configured quotation backend. This checks 
the health endpoint, runs a small extraction and lists the inventory, 
which helps verify the origin before using the UI.`,
	RunE: checkBackend,
}

func init() {
	rootCmd.AddCommand(checkBackendCmd)
}

func checkBackend(cmd *cobra.Command, args []string) error {
	fmt.Println("🧪 Testing backend connection...")

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("💓 Checking %s...\n", a.backend.Origin())
	banner, err := a.backend.Ping(ctx)
	if err != nil {
		return fmt.Errorf("backend is not reachable: %w", err)
	}
	fmt.Printf("   ✅ %s\n", banner)

	fmt.Println("🔤 Testing extraction...")
	resp, err := a.backend.Process(ctx, "2 cctv camera high quality\n1 nvr 4 channel")
	if err != nil {
		return fmt.Errorf("failed to process sample text: %w", err)
	}
	fmt.Printf("   ✅ %s (%d items)\n", resp.Message, len(resp.Items))

	fmt.Println("📦 Testing inventory...")
	items, err := a.backend.ListInventory(ctx)
	if err != nil {
		return fmt.Errorf("failed to list inventory: %w", err)
	}
	fmt.Printf("   ✅ %d items in inventory\n", len(items))

	fmt.Println("\n🎉 Backend is working correctly!")
	return nil
}
