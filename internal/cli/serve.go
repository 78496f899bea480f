package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/api"
	"github.com/shortsmith/shortsmith/internal/config"
	"github.com/shortsmith/shortsmith/internal/generate"
	"github.com/shortsmith/shortsmith/internal/llm"
	"github.com/shortsmith/shortsmith/internal/rewrite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing script generation, scoring, and the
hook-rewrite loop.

Endpoints:
  GET  /health        — Health check
  POST /api/score     — Score a script
  POST /api/rewrite   — Rewrite a script's weakest signal
  POST /api/generate  — Generate a fresh script
  GET  /api/ws        — WebSocket for interactive review sessions`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 6142, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	source := &generate.Source{Logf: log.Printf}
	var provider rewrite.Provider
	if cfg.OpenAIKey != "" {
		client := llm.New(cfg.OpenAIKey, cfg.OpenAIModel)
		source.Client = client
		provider = &rewrite.OpenAIProvider{Client: client}
	}

	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen, source, provider)
	return srv.ListenAndServe()
}
