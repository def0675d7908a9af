package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCompanyCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Firma bilgileri",
	}
	cmd.AddCommand(newCompanyApplyCommand(global), newCompanyRecentCommand(global))
	return cmd
}

func newCompanyApplyCommand(global *GlobalOptions) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "apply <sgk>",
		Short: "SGK koduna göre firma bilgilerini veri tablosuna yaz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMethodFlag(method)
			if err != nil {
				return err
			}
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			updated, err := a.gen.ApplyCompany(args[0], m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d alan güncellendi: %s\n", updated, a.env.Config.Paths.DataFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "Risk değerlendirme yöntemi (Matris | Fine Kinney)")
	return cmd
}

func newCompanyRecentCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Son kullanılan SGK kodları",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			if a.store == nil {
				return errors.New("运行历史未启用")
			}
			codes, err := a.store.RecentSGK()
			if err != nil {
				return err
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
}
