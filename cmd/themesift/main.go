package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chriscorrea/themesift/internal/app"
	"github.com/chriscorrea/themesift/internal/classify"
	"github.com/chriscorrea/themesift/internal/config"
	"github.com/chriscorrea/themesift/internal/corpus"
	"github.com/chriscorrea/themesift/internal/counter"
)

// buildConfig constructs an app.Config from the config file, environment,
// command flags and arguments, in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	if !flags.Changed("config") {
		configPath = config.Path()
	}

	fileCfg, err := config.Load(configPath)
	if err != nil {
		return app.Config{}, err
	}

	// flags override file values only when set
	if flags.Changed("theme") {
		fileCfg.Themes, _ = flags.GetStringSlice("theme")
	}
	if flags.Changed("theme-file") {
		fileCfg.ThemeFile, _ = flags.GetString("theme-file")
	}
	if flags.Changed("penalty-weight") {
		w, _ := flags.GetFloat64("penalty-weight")
		fileCfg.PenaltyWeight = &w
	}
	if flags.Changed("min-documents") {
		fileCfg.MinDocuments, _ = flags.GetInt("min-documents")
	}
	if flags.Changed("workers") {
		fileCfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("from") {
		fileCfg.From, _ = flags.GetString("from")
	}
	if flags.Changed("to") {
		fileCfg.To, _ = flags.GetString("to")
	}
	if flags.Changed("matcher") {
		fileCfg.Matcher, _ = flags.GetString("matcher")
	}
	if flags.Changed("include-children") {
		includeChildren, _ := flags.GetBool("include-children")
		skip := !includeChildren
		fileCfg.SkipChildren = &skip
	}
	if flags.Changed("clean-html") {
		fileCfg.CleanHTML, _ = flags.GetBool("clean-html")
	}

	// counting unit flags are mutually exclusive
	switch {
	case mustBool(cmd, "tokens"):
		fileCfg.Counting = counter.Tokens.String()
	case mustBool(cmd, "words"):
		fileCfg.Counting = counter.Words.String()
	case mustBool(cmd, "characters"):
		fileCfg.Counting = counter.Characters.String()
	}

	if err := fileCfg.Validate(); err != nil {
		return app.Config{}, err
	}

	themes, err := fileCfg.ThemeNames()
	if err != nil {
		return app.Config{}, err
	}

	countingMethod, err := counter.ParseCountingMethod(fileCfg.Counting)
	if err != nil {
		return app.Config{}, err
	}

	matcher, ok := classify.ParseMatcher(fileCfg.Matcher)
	if !ok {
		return app.Config{}, fmt.Errorf("unknown matcher %q", fileCfg.Matcher)
	}

	from, to, err := fileCfg.Window()
	if err != nil {
		return app.Config{}, err
	}

	// determine output format
	var outputFormat app.OutputFormat
	switch {
	case mustBool(cmd, "text"):
		outputFormat = app.Text
	case mustBool(cmd, "json"):
		outputFormat = app.JSON
	default:
		outputFormat = app.Markdown
	}

	// no arguments means stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	search, _ := flags.GetString("search")
	includeAll, _ := flags.GetBool("include-all")
	quiet, _ := flags.GetBool("quiet")
	debug, _ := flags.GetBool("debug")

	return app.Config{
		Sources:        sources,
		Themes:         themes,
		Keywords:       fileCfg.Keywords,
		Boundaries:     fileCfg.Boundaries,
		Ignorable:      fileCfg.Ignorable,
		PenaltyWeight:  fileCfg.PenaltyWeight,
		MinDocuments:   fileCfg.MinDocuments,
		CountingMethod: countingMethod,
		Matcher:        matcher,
		Workers:        fileCfg.Workers,
		Filter: corpus.Filter{
			From:         from,
			To:           to,
			SkipChildren: fileCfg.SkipChildSections(),
		},
		CleanHTML:    fileCfg.CleanHTML,
		IncludeAll:   includeAll,
		SearchQuery:  search,
		OutputFormat: outputFormat,
		Quiet:        quiet,
		Debug:        debug,
	}, nil
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "themesift [corpus...]",
	Short: "Group a tokenized corpus into themes and summarize each one",
	Long: `Themesift assigns timestamped, pre-tokenized documents to themes by keyword and
writes an extractive abstract for every theme, picking sentences that are both
central to the theme and different from each other.

A corpus is a JSON array or JSON Lines file of records with "_id", "time",
"content" and "parse" fields. Corpora may be local files, URLs, or standard input.

Examples:
  themesift --theme 无人机 --theme 洪水 news.jsonl
  themesift --theme-file themes.txt --from 2017-11-01T00:00:00Z https://example.com/corpus.json
  cat news.jsonl | themesift -T drone --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// configure logging first so config loading can log
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("themesift failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	rootCmd.Flags().String("config", config.DefaultPath, "Path to YAML config file (env THEMESIFT_CONFIG)")

	// themes
	rootCmd.Flags().StringSliceP("theme", "T", nil, "Theme name, also used as its keyword (repeatable)")
	rootCmd.Flags().String("theme-file", "", "File with one theme name per line")
	rootCmd.Flags().String("matcher", "", "Keyword matching: exact (default) or stem")

	// summarization
	rootCmd.Flags().Float64("penalty-weight", 0, "Redundancy penalty for diverse sentence selection (default 0.2)")
	rootCmd.Flags().Int("min-documents", 0, "Skip themes with fewer member documents (default 2)")
	rootCmd.Flags().IntP("workers", "j", 0, "Themes summarized concurrently (default 1)")

	// budget counting flags are mutually exclusive
	rootCmd.Flags().Bool("characters", false, "Measure abstract budgets in characters (default)")
	rootCmd.Flags().Bool("words", false, "Measure abstract budgets in words")
	rootCmd.Flags().Bool("tokens", false, "Measure abstract budgets in tiktoken tokens")
	rootCmd.MarkFlagsMutuallyExclusive("characters", "words", "tokens")

	// corpus selection
	rootCmd.Flags().String("from", "", "Only documents at or after this RFC 3339 time")
	rootCmd.Flags().String("to", "", "Only documents before this RFC 3339 time")
	rootCmd.Flags().Bool("include-children", false, "Keep child sections (records with a masterId)")
	rootCmd.Flags().Bool("clean-html", false, "Strip HTML markup from record content")
	rootCmd.Flags().BoolP("include-all", "i", false, "With --clean-html, keep all page text instead of the main article")

	// search functionality
	rootCmd.Flags().String("search", "", "Rank themes by how well their abstracts match the query")

	// output format flags are mutually exclusive
	rootCmd.Flags().Bool("md", false, "Output in Markdown format (default)")
	rootCmd.Flags().Bool("text", false, "Output in plain text format")
	rootCmd.Flags().Bool("json", false, "Output in JSON format")
	rootCmd.MarkFlagsMutuallyExclusive("md", "text", "json")

	// other flags
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
