package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/skillbuddy/internal/config"
	"github.com/jonathan/skillbuddy/internal/interview"
)

var questionsFile string

var questionsCmd = &cobra.Command{
	Use:   "questions [career-path]",
	Short: "List career paths, or the questions of one path",
	Long: `Without arguments, list every career path and its question count.
With a career path, list its questions in order. --file checks a custom catalog against the schema.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuestions,
}

func init() {
	questionsCmd.Flags().StringVar(&questionsFile, "file", "", "Question catalog JSON file (overrides QUESTIONS_FILE)")
	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, args []string) error {
	path := questionsFile
	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path = cfg.Questions.File
	}

	catalog, err := loadCatalog(path)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return printCareerPaths(cmd.OutOrStdout(), catalog)
	}
	return printQuestions(cmd.OutOrStdout(), catalog, args[0])
}

func printCareerPaths(w io.Writer, catalog *interview.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAREER PATH\tQUESTIONS")
	for _, path := range catalog.CareerPaths() {
		qs, _ := catalog.Questions(path)
		fmt.Fprintf(tw, "%s\t%d\n", path, len(qs))
	}
	return tw.Flush()
}

func printQuestions(w io.Writer, catalog *interview.Catalog, careerPath string) error {
	qs, ok := catalog.Questions(careerPath)
	if !ok {
		return fmt.Errorf("unknown career path %q (available: %v)", careerPath, catalog.CareerPaths())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDIFFICULTY\tQUESTION")
	for _, q := range qs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", q.ID, q.Category, q.Difficulty, q.Question)
	}
	return tw.Flush()
}
