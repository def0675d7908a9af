package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/allanpk716/evrak_generator/internal/domain"
	"github.com/allanpk716/evrak_generator/internal/generator"
	"github.com/allanpk716/evrak_generator/internal/report"
)

type generateOptions struct {
	documents []string
	method    string
	pdf       bool
}

func newGenerateCommand(global *GlobalOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Belgeleri üret",
		Long:  "Veri tablosunu okur ve seçilen (varsayılan: tüm) belgeleri proje klasörüne üretir.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), global, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.documents, "doc", "d", nil, "Üretilecek belge, birden fazla verilebilir")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "Risk değerlendirme yöntemi (Matris | Fine Kinney)")
	cmd.Flags().BoolVar(&opts.pdf, "pdf", false, "PDF olarak da dışa aktar")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, global *GlobalOptions, opts *generateOptions) error {
	method, err := parseMethodFlag(opts.method)
	if err != nil {
		return err
	}

	a, err := loadApp(global)
	if err != nil {
		return err
	}
	defer a.close()

	rep, err := a.gen.Generate(ctx, generator.RunOptions{
		Documents:   opts.documents,
		Method:      method,
		GeneratePDF: opts.pdf || a.env.Config.PDF.Enabled,
	})
	if err != nil {
		return err
	}
	return printReport(out, rep)
}

func newListCommand(global *GlobalOptions) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Üretilebilecek belgeleri listele",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMethodFlag(method)
			if err != nil {
				return err
			}
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			if m == "" {
				m = a.gen.DefaultMethod()
			}
			docs, err := a.gen.Documents(m)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				fmt.Fprintln(cmd.OutOrStdout(), doc)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "Risk değerlendirme yöntemi (Matris | Fine Kinney)")
	return cmd
}

// parseMethodFlag 空值表示使用替换表或配置中的方法
func parseMethodFlag(value string) (domain.RiskMethod, error) {
	if value == "" {
		return "", nil
	}
	method, ok := domain.ParseRiskMethod(value)
	if !ok {
		return "", fmt.Errorf("未知的风险评估方法: %s", value)
	}
	return method, nil
}

// printReport 打印结果，有失败文档时返回错误
func printReport(out io.Writer, rep *report.Report) error {
	fmt.Fprintln(out, report.Render(rep))
	if failed := len(rep.Failed()); failed > 0 {
		return fmt.Errorf("%d 个文档生成失败", failed)
	}
	return nil
}
