package cmd

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizsmith/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question API over HTTP",
	Long: `Serve GET /health, POST /api/generate-questions and
POST /api/regenerate-question until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :5000)")
	serveCmd.Flags().String("banks", "", "YAML file overriding the mock generator banks")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	addr := p.cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	switch strings.ToLower(p.cfg.Log.Mode) {
	case "prod", "production", "quiet":
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Config{
		Pipeline:       p.orch,
		ModelName:      p.cfg.ModelName(),
		AllowedOrigins: p.cfg.Server.AllowedOrigins,
		Log:            p.log,
	})
	return srv.Run(cmd.Context(), addr)
}
