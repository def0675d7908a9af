// Package cmd 命令行入口
package cmd

import (
	"github.com/spf13/cobra"
)

const (
	// AppName 程序名称
	AppName = "evrak-generator"
	// AppVersion 程序版本
	AppVersion = "1.0.0"
)

// GlobalOptions 所有子命令共用的参数
type GlobalOptions struct {
	ConfigFile string
	Verbose    bool
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "İSG evrak üretici",
		Long:          "Şablon klasöründeki Word ve Excel belgelerini veri tablosundaki değerlerle doldurur, arşivler ve isteğe bağlı olarak PDF'e çevirir.",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Yapılandırma dosyası (varsayılan: program dizininde veya çalışma dizininde config.toml)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Ayrıntılı çıktı")

	root.AddCommand(
		newGenerateCommand(opts),
		newListCommand(opts),
		newYearlyCommand(opts),
		newActivityCommand(opts),
		newCompanyCommand(opts),
		newRulesCommand(opts),
		newHistoryCommand(opts),
		newServeCommand(opts),
		newConfigCommand(opts),
	)
	return root
}
