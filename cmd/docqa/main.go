package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/logging"
)

func main() {
	// Credentials usually live in .env during local use; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Question answering over a corpus of structured documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAskCmd(), newSummarizeCmd(), newImportCmd(), newArticlesCmd())
	return root
}

func newApplication() (*app.Application, error) {
	cfg := config.Load()
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the document corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			answer, err := application.Ask(cmd.Context(), args[0])
			if err != nil {
				if msg, terminal := terminalMessage(err); terminal {
					fmt.Println(msg)
					return nil
				}
				return err
			}

			fmt.Printf("Article: %s\n", answer.Article)
			fmt.Printf("Sections: %v\n", answer.SectionIDs)
			if len(answer.DroppedSectionIDs) > 0 {
				fmt.Printf("Sections without content: %v\n", answer.DroppedSectionIDs)
			}
			fmt.Printf("\n%s\n", answer.Text)
			return nil
		},
	}
}

// terminalMessage maps the pipeline's terminal conditions to user-facing
// text. Anything else is a real fault and propagates.
func terminalMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrNoDocumentFound):
		return "No document in the corpus matches this question.", true
	case errors.Is(err, domain.ErrNoSectionsFound):
		return "No relevant sections could be identified in the selected document.", true
	case errors.Is(err, domain.ErrContextUnavailable):
		return "The relevant sections have no stored content, so the question cannot be answered.", true
	}
	return "", false
}

func newSummarizeCmd() *cobra.Command {
	var article string
	var all bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Generate section and article summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (article != "") == all {
				return fmt.Errorf("exactly one of --article or --all is required")
			}

			application, err := newApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			if all {
				return application.SummarizeAll(cmd.Context())
			}
			return application.Summarize(cmd.Context(), article)
		},
	}

	cmd.Flags().StringVar(&article, "article", "", "title of the article to summarize")
	cmd.Flags().BoolVar(&all, "all", false, "summarize every article without a summary")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import markdown documents into the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Import(cmd.Context(), args[0])
		},
	}
}

func newArticlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "List articles and their summary status",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			articles, err := application.Articles(cmd.Context())
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Println("The corpus is empty.")
				return nil
			}

			for _, art := range articles {
				status := "summarized"
				if art.Summary == "" {
					status = "no summary"
				}
				fmt.Printf("%4d  %-11s %s\n", art.ID, "["+status+"]", strings.TrimSpace(art.Title))
			}
			return nil
		},
	}
}
