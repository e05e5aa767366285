package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	intakeFile     string
	intakePDF      bool
	intakeCustomer string
	intakeAddress  string
)

var intakeCmd = &cobra.Command{
	Use:   "intake [text]",
	Short: "Turn a job description into a quotation",
	Long: `Send a free-text job description to the backend, build a quotation 
from the extracted items and print it. The text is taken from the 
arguments, from --file, or from stdin with --file -.

Examples:
  quotedesk intake "4 cctv high quality, 1 nvr 4 channel, 90 mtr cable"
  quotedesk intake --file site-visit.txt --customer "Anand Stores" --pdf`,
	RunE: runIntake,
}

func init() {
	rootCmd.AddCommand(intakeCmd)

	intakeCmd.Flags().StringVarP(&intakeFile, "file", "f", "", "read the description from a file (- for stdin)")
	intakeCmd.Flags().BoolVar(&intakePDF, "pdf", false, "export the quotation as a PDF")
	intakeCmd.Flags().StringVar(&intakeCustomer, "customer", "", "customer name")
	intakeCmd.Flags().StringVar(&intakeAddress, "address", "", "customer address")
}

func runIntake(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	text, err := readIntakeText(cmd, a.fs, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := context.Background()

	fmt.Fprintln(out, "🔍 Processing description...")
	h := a.handoff()
	st, err := h.Submit(ctx, text)
	if err != nil {
		return fmt.Errorf("nothing to process: %w", err)
	}

	switch s := st.(type) {
	case intake.Failed:
		return fmt.Errorf("%s: %w", s.Message, s.Err)
	case intake.Succeeded:
		fmt.Fprintf(out, "✅ %s\n\n", s.Message)
		seed, _ := h.Take(s.ReadyAt)
		q := a.controller().OpenWithSeed(seed)

		if intakeCustomer != "" || intakeAddress != "" {
			if err := q.SetCustomer(quotation.Customer{Name: intakeCustomer, Address: intakeAddress}); err != nil {
				return err
			}
		}

		printQuotation(out, q)

		if intakePDF {
			fmt.Fprintln(out, "\n📄 Generating PDF...")
			path, err := a.exporter().Export(ctx, q)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "   ✅ Saved to %s\n", path)
		}
	}
	return nil
}

func readIntakeText(cmd *cobra.Command, fs afero.Fs, args []string) (string, error) {
	switch intakeFile {
	case "":
		return strings.Join(args, " "), nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := afero.ReadFile(fs, intakeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", intakeFile, err)
		}
		return string(data), nil
	}
}

func printQuotation(w io.Writer, q *quotation.Quotation) {
	c := q.Customer()
	fmt.Fprintf(w, "Quotation No: %s    Date: %s\n", q.Number(), q.Date())
	if c.Name != "" {
		fmt.Fprintf(w, "Customer: %s\n", c.Name)
	}
	if c.Address != "" {
		fmt.Fprintf(w, "Address: %s\n", c.Address)
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))
	fmt.Fprintf(w, "%-3s %-36s %6s %12s %14s\n", "#", "Description", "Qty", "Rate", "Amount")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for i, li := range q.Items() {
		fmt.Fprintf(w, "%-3d %-36s %6d %12s %14s\n", i+1, li.Description, li.Quantity,
			quotation.FormatMoney(li.Rate), quotation.FormatMoney(li.Amount))
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))

	t := q.Totals()
	fmt.Fprintf(w, "%63s %14s\n", "Subtotal:", quotation.FormatMoney(t.Subtotal))
	fmt.Fprintf(w, "%63s %14s\n", "GST ("+quotation.FormatPercent(t.TaxRate)+"%):", quotation.FormatMoney(t.Tax))
	fmt.Fprintf(w, "%63s %14s\n", "Total:", quotation.FormatMoney(t.Total))
}
