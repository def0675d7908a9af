package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/allanpk716/evrak_generator/internal/generator"
)

type yearlyOptions struct {
	date        string
	reportYear  string
	codes       []string
	entriesFile string
	pdf         bool
}

func (o *yearlyOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.date, "date", time.Now().Format("02.01.2006"), "Yıllık tarih (gg.aa.yyyy)")
	cmd.Flags().StringVar(&o.reportYear, "report-year", "", "Değerlendirme raporu yılı; varsayılan yıllık tarihin yılı")
	cmd.Flags().StringArrayVar(&o.codes, "sgk", nil, "7 haneli SGK kodu, birden fazla verilebilir")
	cmd.Flags().StringVar(&o.entriesFile, "entries", "", "YAML firma listesi (sgk, method, risk_date, phone, mail)")
}

// options 合并 --sgk 和 --entries 中的公司
func (o *yearlyOptions) options() (generator.YearlyOptions, error) {
	opts := generator.YearlyOptions{Date: o.date, ReportYear: o.reportYear, GeneratePDF: o.pdf}
	for _, code := range o.codes {
		opts.Entries = append(opts.Entries, generator.YearlyEntry{SGK: code})
	}
	if o.entriesFile != "" {
		entries, err := readEntries(o.entriesFile)
		if err != nil {
			return opts, err
		}
		opts.Entries = append(opts.Entries, entries...)
	}
	return opts, nil
}

func readEntries(path string) ([]generator.YearlyEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取公司列表失败: %w", err)
	}
	var entries []generator.YearlyEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("解析公司列表失败: %w", err)
	}
	return entries, nil
}

func newYearlyCommand(global *GlobalOptions) *cobra.Command {
	opts := &yearlyOptions{}
	cmd := &cobra.Command{
		Use:   "yearly",
		Short: "Yıllık plan ve raporları toplu üret",
		Long:  "Her firma için yıllık eğitim planı, yıllık çalışma planı ve yıllık değerlendirme raporunu üretir. --sgk veya --entries verilmezse yıllık veri tablosu okunur.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yearly, err := opts.options()
			if err != nil {
				return err
			}
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			yearly.GeneratePDF = yearly.GeneratePDF || a.env.Config.PDF.Enabled
			rep, err := a.gen.RunYearly(cmd.Context(), yearly)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), rep)
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.pdf, "pdf", false, "PDF olarak da dışa aktar")
	cmd.AddCommand(newYearlySaveCommand(global))
	return cmd
}

func newYearlySaveCommand(global *GlobalOptions) *cobra.Command {
	opts := &yearlyOptions{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Firma bilgilerinden yıllık veri tablosunu yaz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yearly, err := opts.options()
			if err != nil {
				return err
			}
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			path, err := a.gen.SaveYearlyData(yearly)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d firma kaydedildi: %s\n", len(yearly.Entries), path)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}
