package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matthieukhl/quotedesk/internal/inventory"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var newItem inventory.Draft

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the backend product inventory",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	Args:  cobra.NoArgs,
	RunE:  listInventory,
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an inventory item",
	Long: `Add an inventory item. Name and a price above zero are required. 
Category is one of camera, nvr, cable, accessory, installation, other 
(default other) and the unit defaults to piece.`,
	Args: cobra.NoArgs,
	RunE: addInventory,
}

var inventoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an inventory item",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteInventory,
}

var inventoryImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Bulk-add inventory items from a JSON file",
	Long: `Bulk-add inventory items from a JSON array of 
{"name", "category", "price", "unit", "description"} objects. Items are 
added in order and the import stops at the first failure.`,
	Args: cobra.ExactArgs(1),
	RunE: importInventory,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryListCmd, inventoryAddCmd, inventoryDeleteCmd, inventoryImportCmd)

	f := inventoryAddCmd.Flags()
	f.StringVar(&newItem.Name, "name", "", "item name")
	f.StringVar((*string)(&newItem.Category), "category", string(inventory.CategoryOther), "item category")
	f.Float64Var(&newItem.Price, "price", 0, "unit price")
	f.StringVar(&newItem.Unit, "unit", inventory.DefaultUnit, "unit of sale (piece, meter, job)")
	f.StringVar(&newItem.Description, "description", "", "optional description")
}

func inventoryClient() (*app, *inventory.Client, error) {
	a, err := loadApp()
	if err != nil {
		return nil, nil, err
	}
	inv, err := a.inventory()
	if err != nil {
		a.close()
		return nil, nil, fmt.Errorf("failed to create inventory client: %w", err)
	}
	return a, inv, nil
}

func listInventory(cmd *cobra.Command, args []string) error {
	a, inv, err := inventoryClient()
	if err != nil {
		return err
	}
	defer a.close()

	if err := inv.Refresh(context.Background()); err != nil {
		return err
	}
	printInventory(cmd.OutOrStdout(), inv.Items())
	return nil
}

func addInventory(cmd *cobra.Command, args []string) error {
	a, inv, err := inventoryClient()
	if err != nil {
		return err
	}
	defer a.close()

	item, err := inv.Create(context.Background(), newItem)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s (%s)\n", item.Name, item.ID)
	return nil
}

func deleteInventory(cmd *cobra.Command, args []string) error {
	a, inv, err := inventoryClient()
	if err != nil {
		return err
	}
	defer a.close()

	if err := inv.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
	return nil
}

func importInventory(cmd *cobra.Command, args []string) error {
	a, inv, err := inventoryClient()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := afero.ReadFile(a.fs, args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	var drafts []inventory.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📦 Importing %d items...\n", len(drafts))
	n, err := inv.Import(context.Background(), drafts)
	fmt.Fprintf(out, "   ✅ %d of %d imported\n", n, len(drafts))
	return err
}

func printInventory(w io.Writer, items []types.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items in inventory")
		return
	}
	fmt.Fprintf(w, "%-20s %-28s %-14s %12s %-8s\n", "ID", "Name", "Category", "Price", "Unit")
	for _, it := range items {
		fmt.Fprintf(w, "%-20s %-28s %-14s %12.2f %-8s\n", it.ID, it.Name, it.Category, it.Price, it.Unit)
	}
}
