package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allanpk716/evrak_generator/internal/config"
)

func newConfigCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Yapılandırma",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Varsayılan config.toml dosyasını yaz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := global.ConfigFile
			if path == "" {
				path = config.ConfigFileName
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", path)
			}
			if err := config.NewConfigManager().SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Yapılandırma yazıldı: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Mevcut yapılandırma dosyasının üzerine yaz")

	cmd.AddCommand(initCmd)
	return cmd
}
