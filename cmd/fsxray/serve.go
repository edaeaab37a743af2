package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/server"
)

// serveCmd runs the HTTP API so dashboards can poll fresh reports instead
// of shelling out to analyze.
func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analysis reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromFlags(cmd)

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			log := logrus.WithField("component", "http")
			srv := server.New(engine, log)

			log.WithField("listen", listen).Info("serving analysis reports")
			return srv.Router().Run(listen)
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&listen, "listen", ":8080", "Listen address")
	return cmd
}
