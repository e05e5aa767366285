package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/quotedesk/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session API server",
	Long: `Start the session API server which provides:
- the intake, quotation and PDF export flow as JSON endpoints
- inventory listing and management proxied to the backend

One session is served; a browser front end polls /api/session.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 quotedesk starting...")

	fmt.Println("📝 Loading configuration...")
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("🔌 Using %s backend at %s\n", a.cfg.Backend.Provider, a.backend.Origin())

	inv, err := a.inventory()
	if err != nil {
		return fmt.Errorf("failed to create inventory client: %w", err)
	}

	fmt.Println("⚙️  Setting up server...")
	gin.SetMode(gin.ReleaseMode)
	session := server.NewSession(a.backend, a.controller(), a.handoff())
	srv := server.NewServer(session, inv, a.exporter(), a.log)

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	fmt.Printf("🌐 Starting server on %s...\n", addr)
	if err := srv.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
