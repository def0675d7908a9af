package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/allanpk716/evrak_generator/internal/store"
)

func newHistoryCommand(global *GlobalOptions) *cobra.Command {
	var (
		format string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Geçmiş çalıştırmalar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			if a.store == nil {
				return errors.New("运行历史未启用")
			}
			if len(args) == 1 {
				detail, err := a.store.GetRun(args[0])
				if err != nil {
					return err
				}
				return writeRunDetail(cmd.OutOrStdout(), detail, format)
			}
			runs, err := a.store.ListRuns(limit)
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Çıktı biçimi (text | yaml)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Gösterilecek çalıştırma sayısı")
	return cmd
}

func writeRuns(out io.Writer, runs []store.RunSummary, format string) error {
	if format == "yaml" {
		return writeYAML(out, runs)
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-6s %s\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Summary(), r.Project)
	}
	return nil
}

func writeRunDetail(out io.Writer, detail *store.RunDetail, format string) error {
	if format == "yaml" {
		return writeYAML(out, detail)
	}
	fmt.Fprintf(out, "%s  %s  %s\n", detail.ID, detail.Project, detail.Summary())
	for _, d := range detail.Documents {
		mark := "✓"
		if !d.Success {
			mark = "✗"
		}
		fmt.Fprintf(out, "  %s %s", mark, d.Name)
		if d.Error != "" {
			fmt.Fprintf(out, "  %s", d.Error)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func writeYAML(out io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("输出 YAML 失败: %w", err)
	}
	return enc.Close()
}
