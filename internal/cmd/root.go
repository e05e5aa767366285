package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quotedesk",
	Short: "quotedesk - CCTV quotation builder",
	Long: `quotedesk turns a free-text job description into an editable CCTV 
installation quotation with 18% GST, exports it as a PDF and manages the 
product inventory.

Text extraction and PDF rendering are done by the quotation backend. Use 
the terminal UI for interactive work, serve the session API for a browser 
front end, or run the one-shot commands from scripts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, $HOME/.quotedesk/config.yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
