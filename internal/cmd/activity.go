package cmd

import (
	"github.com/spf13/cobra"

	"github.com/allanpk716/evrak_generator/internal/generator"
)

func newActivityCommand(global *GlobalOptions) *cobra.Command {
	opts := generator.ActivityOptions{}
	cmd := &cobra.Command{
		Use:   "activity [sgk...]",
		Short: "Faaliyet formlarını toplu üret",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			opts.Codes = args
			rep, err := a.gen.RunActivityForms(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&opts.Date, "date", "", "Faaliyet tarihi (gg.aa.yyyy); boşsa tarih alanı silinir")
	return cmd
}
