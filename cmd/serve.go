package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/Mohsinsiddi/swapctl/internal/server"
	"github.com/Mohsinsiddi/swapctl/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the allow-list check HTTP endpoint",
	Long: `Serve POST /api/checkAllowance, GET /healthz and GET /metrics.

A request body {"address": "0x..", "contractAddress": "0x.."} is answered
with {"isAllowed", "isOwner", "contractAddress"}. Without contractAddress the
configured candidate contracts are probed in order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srvLog := logging.New(logging.Options{Verbose: verbose, File: cfg.LogFile, Out: cmd.ErrOrStderr()})
		if !verbose {
			srvLog.SetLevel(logrus.InfoLevel)
			gin.SetMode(gin.ReleaseMode)
		}

		s, err := openReadSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		list, err := candidates(s.network)
		if err != nil && !errors.Is(err, access.ErrNoCandidates) {
			return err
		}
		if len(list) == 0 {
			srvLog.Warn("no candidate contracts configured, requests must name contractAddress")
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}
		srv := server.New(server.Options{
			Addr:         addr,
			Caller:       s.client,
			Candidates:   list,
			Log:          srvLog,
			AllowOrigins: serveOrigins,
		})
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Listening on %s (%s via %s)", srv.Addr(), s.network.DisplayName, s.client.URL())))
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config server_addr)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origin, repeatable (default: any)")
}
