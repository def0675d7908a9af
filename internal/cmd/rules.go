package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/allanpk716/evrak_generator/internal/datasource"
)

// rulesCheck rules check 的输出
type rulesCheck struct {
	Path    string               `yaml:"path"`
	Rules   int                  `yaml:"rules"`
	Skipped int                  `yaml:"skipped"`
	Gaps    []datasource.RuleGap `yaml:"gaps"`
}

func newRulesCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Silme kuralları",
	}
	cmd.AddCommand(newRulesCheckCommand(global))
	return cmd
}

func newRulesCheckCommand(global *GlobalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Kuralı olmayan ay ve plan türlerini listele",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(global)
			if err != nil {
				return err
			}
			defer a.close()

			check := rulesCheck{
				Path:    a.env.Config.Paths.RulesFile,
				Rules:   a.rules.Len(),
				Skipped: a.rules.Skipped(),
				Gaps:    a.rules.Gaps(),
			}
			return writeRulesCheck(cmd.OutOrStdout(), check, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Çıktı biçimi (text | yaml)")
	return cmd
}

func writeRulesCheck(out io.Writer, check rulesCheck, format string) error {
	switch format {
	case "yaml":
		return writeYAML(out, check)
	case "text":
		fmt.Fprintf(out, "%s: %d kural, %d satır atlandı\n", check.Path, check.Rules, check.Skipped)
		if len(check.Gaps) == 0 {
			fmt.Fprintln(out, "Eksik kural yok")
			return nil
		}
		fmt.Fprintf(out, "%d eksik kural:\n", len(check.Gaps))
		for _, gap := range check.Gaps {
			fmt.Fprintf(out, "  ay %2d  %s\n", gap.Month, gap.PlanKey)
		}
		return nil
	default:
		return fmt.Errorf("未知的输出格式: %s", format)
	}
}
