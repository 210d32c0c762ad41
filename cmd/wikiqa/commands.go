package main

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"wikiqa/internal/tui"
)

func newChatCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [url]",
		Short: "Open the interactive chat for a wiki article",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, c.config, c.logger(true))
			if err != nil {
				return err
			}
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			p := tea.NewProgram(tui.New(ctx, a.session, url),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}

func newAskCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <url> <question>",
		Short: "Answer one question about a wiki article",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, c.config, c.logger(false))
			if err != nil {
				return err
			}
			if _, err := a.session.Process(ctx, args[0]); err != nil {
				return err
			}
			question := strings.Join(args[1:], " ")
			fmt.Fprintln(cmd.OutOrStdout(), a.session.Ask(ctx, question))
			return nil
		},
	}
}

func newSummarizeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Print the summary of a wiki article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, c.config, c.logger(false))
			if err != nil {
				return err
			}
			summary, err := a.session.Process(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.session.Title())
			fmt.Fprintln(out)
			fmt.Fprintln(out, summary)
			return nil
		},
	}
}

func newSearchCommand(c *commandContext) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "search <url> <query>",
		Short: "Show the best matching chunks of a wiki article",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if topK <= 0 {
				return fmt.Errorf("--top-k must be positive")
			}
			ctx := cmd.Context()
			a, err := buildApp(ctx, c.config, c.logger(false))
			if err != nil {
				return err
			}
			if _, err := a.session.Process(ctx, args[0]); err != nil {
				return err
			}
			hits, err := a.session.Search(ctx, strings.Join(args[1:], " "), topK)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(hits))
			for i, h := range hits {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%.3f", h.Score),
					h.Chunk.Section,
					h.Chunk.Text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Rank", "Score", "Section", "Text"}, rows, 2))
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 3, "Number of chunks to show")
	return cmd
}

func newExportCommand(c *commandContext) *cobra.Command {
	var csvPath, xlsxPath string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "export <url>",
		Short: "Generate a question/answer dataset from a wiki article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, c.config, c.logger(false))
			if err != nil {
				return err
			}
			doc, err := a.scraper.Scrape(ctx, args[0])
			if err != nil {
				return err
			}
			exp, err := buildExporter(a, csvPath, xlsxPath)
			if err != nil {
				return err
			}
			if dryRun {
				rows, err := exp.Rows(ctx, doc.Chunks)
				if err != nil {
					return err
				}
				cells := make([][]string, 0, len(rows))
				for _, r := range rows {
					cells = append(cells, []string{r.Section, r.Question, r.Answer})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Section", "Question", "Answer"}, cells, 0))
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows from %q (not written)\n", len(rows), doc.Title)
				return nil
			}
			n, err := exp.Export(ctx, doc.Chunks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows from %q\n", n, doc.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path (defaults to export.csv_path)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "XLSX output path (defaults to export.xlsx_path)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated rows instead of writing them")
	return cmd
}
