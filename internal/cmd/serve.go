package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allanpk716/evrak_generator/internal/server"
)

func newServeCommand(global *GlobalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Yerel HTTP API'yi başlat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			if port == 0 {
				port = a.env.Config.Server.Port
			}
			srv := server.New(a.gen, a.store, a.env.Logger, a.env.Config.Server.DevMode)
			return srv.Run(fmt.Sprintf("127.0.0.1:%d", port))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Dinlenecek port; varsayılan yapılandırmadaki değer")
	return cmd
}
