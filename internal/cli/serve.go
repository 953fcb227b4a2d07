package cli

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	restapi "github.com/kginsights/datapuur/internal/server"
)

func newServeCmd(app func() *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the built-in demo backend",
		Long: `Serve starts a local API that replays the demo fixtures, so every other
command can be tried without a real platform:

  datapuur serve --addr :9090 &
  datapuur --api-url http://localhost:9090 login -u demo -p demo`,
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(gin.Recovery())
			restapi.NewDemoHandler(engine, a.Log)

			fmt.Printf("Demo backend listening on %s\n", addr)
			return engine.Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "listen address")
	return cmd
}
