package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/config"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

// --- ingest ---

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Register snippets from a YAML or JSON file",
		Long: `Register snippets from a YAML or JSON file.

The file holds a list of snippet records, or a mapping with a "snippets" list.
Records that fail validation are skipped and reported in the log.

Examples:
  uiforge ingest ./snippets/heroes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.registry.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess("Registered %d snippets from %s", n, args[0])
			return nil
		},
	}
}

// --- search ---

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog with feedback-boosted ranking",
		Long: `Search the catalog with feedback-boosted ranking.

Examples:
  uiforge search --type hero --mood bold
  uiforge search --type pricing --industry fintech --tags dark,minimal --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := catalog.Query{}
			q.Type, _ = cmd.Flags().GetString("type")
			q.Variant, _ = cmd.Flags().GetString("variant")
			q.Category, _ = cmd.Flags().GetString("category")
			q.Mood, _ = cmd.Flags().GetString("mood")
			q.Industry, _ = cmd.Flags().GetString("industry")
			q.VisualStyle, _ = cmd.Flags().GetString("style")
			tags, _ := cmd.Flags().GetString("tags")
			q.Tags = splitList(tags)
			q.Limit, _ = cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			if q.Empty() {
				return fmt.Errorf("at least one of --type, --variant, --category, --mood, --industry, --style or --tags is required")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.ranker.Search(ctx, q)
			if asJSON {
				if results == nil {
					results = []catalog.Result{}
				}
				return writeJSON(cmd.OutOrStdout(), results)
			}
			if len(results) == 0 {
				printWarning("No snippets matched")
				return nil
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().String("type", "", "component type")
	cmd.Flags().String("variant", "", "variant")
	cmd.Flags().String("category", "", "atom, molecule or organism")
	cmd.Flags().String("mood", "", "mood")
	cmd.Flags().String("industry", "", "industry")
	cmd.Flags().String("style", "", "visual style")
	cmd.Flags().String("tags", "", "comma-separated tags")
	cmd.Flags().Int("limit", 10, "maximum number of results")
	cmd.Flags().Bool("json", false, "print results as JSON")
	return cmd
}

// --- feedback ---

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <generation-id> positive|negative",
		Short: "Rate a recorded generation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, _ := cmd.Flags().GetString("comment")

			ctx := cmd.Context()
			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.recorder.RecordExplicitFeedback(ctx, args[0], model.Rating(args[1]), comment)
			if err != nil {
				return err
			}
			printSuccess("Recorded %s feedback %s for %s (score %.1f)", entry.Rating, entry.ID, entry.GenerationID, entry.Score)
			return nil
		},
	}
	cmd.Flags().String("comment", "", "optional comment")
	return cmd
}

// --- stats ---

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show feedback and pattern statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			ctx := cmd.Context()
			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.recorder.Stats(ctx)
			if err != nil {
				return err
			}
			generations, err := a.store.CountGenerations(ctx)
			if err != nil {
				return err
			}
			patterns, err := a.store.ListPatterns(ctx)
			if err != nil {
				return err
			}
			promoted := 0
			for _, p := range patterns {
				if p.Promoted {
					promoted++
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"feedback":          st,
					"generations":       generations,
					"patterns":          len(patterns),
					"promoted_patterns": promoted,
					"snippets":          a.registry.Len(),
				})
			}

			w := cmd.OutOrStdout()
			printStatusTo(w, "Snippets", "%d", a.registry.Len())
			printStatusTo(w, "Generations", "%d", generations)
			printStatusTo(w, "Feedback", "%d (%d explicit, %d implicit)", st.Total, st.Explicit, st.Implicit)
			printStatusTo(w, "Ratings", "%d positive, %d negative", st.Positive, st.Negative)
			printStatusTo(w, "Patterns", "%d (%d promoted)", len(patterns), promoted)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print statistics as JSON")
	return cmd
}

// --- promote ---

func newPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Run one promotion cycle now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			t := a.promoter.Thresholds()
			printStep("Promoting patterns seen at least %d times with average score >= %.2f", t.MinFrequency, t.MinAvgScore)
			n := a.promoter.RunCycle(ctx)
			if n == 0 {
				printWarning("No patterns qualified")
				return nil
			}
			printSuccess("Promoted %d patterns", n)
			return nil
		},
	}
}

// --- config ---

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, k := range config.ShowAll(cfg) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nValid keys:\n  " + strings.Join(config.ValidKeys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.SetKey(configPath(cmd), key, value); err != nil {
				return err
			}
			printSuccess("Set %s = %s", key, value)
			return nil
		},
	}

	unsetCmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value so its default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.UnsetKey(configPath(cmd), args[0]); err != nil {
				return err
			}
			printSuccess("Unset %s", args[0])
			return nil
		},
	}

	configCmd.AddCommand(showCmd, setCmd, unsetCmd)
	return configCmd
}

// --- helpers ---

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
