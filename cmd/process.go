package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/codes"
	"github.com/abhisek/chartaudit/internal/config"
	"github.com/abhisek/chartaudit/internal/derive"
	"github.com/abhisek/chartaudit/internal/extract"
	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/llm"
	"github.com/abhisek/chartaudit/internal/pipeline"
	"github.com/abhisek/chartaudit/internal/store"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Process a procedure note: extract, derive, audit, self-correct",
	Long: "Reads a procedure note from a file (or stdin when no file is given),\n" +
		"derives procedure codes, audits them against the raw-text classifier,\n" +
		"and runs the bounded self-correction loop on high-confidence omissions.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := codes.Validate(); err != nil {
			return err
		}

		note, err := readNote(args)
		if err != nil {
			return err
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if src, _ := cmd.Flags().GetString("source"); src != "" {
			cfg.Audit.Source = audit.Source(src)
		}

		ctx := cmd.Context()

		var s *store.Store
		if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
			dbPath, err := resolveDBPath(cmd)
			if err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
			s, err = store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()
		}

		judgeMode, _ := cmd.Flags().GetString("judge")
		j, judgeName, err := buildJudge(cmd, judgeMode, s)
		if err != nil {
			return err
		}

		p := pipeline.New(
			extract.New(),
			derive.New(),
			classify.NewHandle(cfg.Classify),
			j,
			cfg.Audit,
			cfg.Correction,
		)
		if s != nil {
			p = p.WithRunStore(s.RunRepo())
		}

		res, err := p.Run(ctx, note)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		renderResult(res, judgeName)
		return nil
	},
}

func readNote(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read note: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read note from stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty note: pass a file or pipe text on stdin")
	}
	return string(data), nil
}

// buildJudge resolves the judge mode: auto picks the LLM judge when an
// API key is discoverable and falls back to the recipe judge otherwise.
func buildJudge(cmd *cobra.Command, mode string, s *store.Store) (judge.Judge, string, error) {
	var events store.EventRepo
	if s != nil {
		events = s.EventRepo()
	}

	switch mode {
	case "off":
		return nil, "off", nil
	case "recipe":
		return judge.NewRecipeJudge(), "recipe", nil
	case "llm":
		llmCfg := llm.ConfigFromEnv()
		if err := llmCfg.Validate(); err != nil {
			return nil, "", err
		}
		p, err := llm.NewProvider(cmd.Context(), llmCfg, events)
		if err != nil {
			return nil, "", err
		}
		return judge.NewLLMJudge(p), "llm:" + p.ModelID(), nil
	case "auto", "":
		if llmCfg, ok := llm.DiscoverConfig(); ok {
			p, err := llm.NewProvider(cmd.Context(), llmCfg, events)
			if err != nil {
				return nil, "", err
			}
			return judge.NewLLMJudge(p), "llm:" + p.ModelID(), nil
		}
		return judge.NewRecipeJudge(), "recipe", nil
	default:
		return nil, "", fmt.Errorf("unknown judge mode %q (want auto, recipe, llm or off)", mode)
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reviewStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	appliedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
)

func renderResult(res *pipeline.Result, judgeName string) {
	fmt.Println(titleStyle.Render("Derived codes"))
	if len(res.DerivedCodes) == 0 {
		fmt.Println(dimStyle.Render("  (none)"))
	}
	for _, c := range res.DerivedCodes {
		label := ""
		if d := codes.Get(c); d != nil {
			label = d.Label
		}
		fmt.Printf("  %s  %s\n", codeStyle.Render(c), label)
	}

	fmt.Println()
	fmt.Printf("%s %s\n", dimStyle.Render("Audit source:"), res.SourceLabel)
	fmt.Printf("%s %s\n", dimStyle.Render("Judge:"), judgeName)
	if res.Difficulty != "" {
		fmt.Printf("%s %s\n", dimStyle.Render("Difficulty:"), string(res.Difficulty))
	}

	if len(res.Corrections) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render("Corrections"))
		for _, c := range res.Corrections {
			fmt.Printf("  %s %s\n", appliedStyle.Render("+"+c.TargetCode),
				dimStyle.Render(fmt.Sprintf("(p=%.2f, attempt %d)", c.Probability, c.Attempt)))
			fmt.Printf("    %s\n", dimStyle.Render("evidence: "+truncate(c.EvidenceQuote, 70)))
		}
	}

	if len(res.Warnings) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render("Warnings"))
		for _, w := range res.Warnings {
			fmt.Printf("  %s\n", warnStyle.Render("! "+w))
		}
	}

	fmt.Println()
	if res.NeedsManualReview {
		fmt.Println(reviewStyle.Render("NEEDS MANUAL REVIEW"))
	} else {
		fmt.Println(codeStyle.Render("OK"))
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("run %s  note %s", res.RunID, shortHash(res.NoteSHA256))))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func init() {
	processCmd.Flags().Bool("json", false, "Emit the full result as JSON")
	processCmd.Flags().String("config", "", "Path to YAML config file")
	processCmd.Flags().String("source", "", "Audit source mode: raw_ml or disabled")
	processCmd.Flags().String("judge", "auto", "Judge mode: auto, recipe, llm or off")
	processCmd.Flags().Bool("no-store", false, "Do not persist the run or LLM events")
}
