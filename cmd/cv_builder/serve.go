package main

import (
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for versions, previews and exports.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	port := ws.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	browser := export.NewChromeBrowser(ws.cfg.ChromePath, 0, ws.cfg.PrintTimeout(), ws.cfg.Verbose)
	exporter := export.NewExporter(browser, ws.cfg.Verbose)

	var history server.ExportHistory
	if ws.db != nil {
		history = ws.db
	}

	srv := server.New(server.Config{
		Port:           port,
		Locale:         ws.cfg.Locale,
		ExportDefaults: ws.cfg.ExportOptions(),
		Verbose:        ws.cfg.Verbose,
	}, ws.store, exporter, history)

	return srv.Start()
}
