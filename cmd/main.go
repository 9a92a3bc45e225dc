package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/quizforge/quizforge/internal/types"
	cfgPkg "github.com/quizforge/quizforge/pkg/config"
	"github.com/quizforge/quizforge/pkg/pacer"
	"github.com/quizforge/quizforge/pkg/pageindex"
	"github.com/quizforge/quizforge/pkg/provider"
	"github.com/quizforge/quizforge/pkg/questions"
	"github.com/quizforge/quizforge/pkg/semantic"
	"github.com/quizforge/quizforge/pkg/store"
	"github.com/quizforge/quizforge/pkg/structural"
	"github.com/quizforge/quizforge/pkg/toc"
	"github.com/quizforge/quizforge/pkg/topics"
)

type Config struct {
	InputPath    string
	OutputPath   string
	DBUrl        string
	ProviderName string
	TOCThreshold float64
	ChunkPages   int
	OverlapPages int
	BatchDelay   int
	TopicsOnly   bool
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var config Config
	var configPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&config.InputPath, "input", "", "Path to page-marked OCR text file")
	flag.StringVar(&config.OutputPath, "out", "", "Write generated questions JSON here (default stdout)")
	flag.StringVar(&config.DBUrl, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (optional)")
	flag.StringVar(&config.ProviderName, "provider", "", "Completion provider (openai, groq, deepseek)")
	flag.Float64Var(&config.TOCThreshold, "toc-threshold", 0.4, "TOC detection acceptance threshold")
	flag.IntVar(&config.ChunkPages, "chunk-pages", 30, "Pages per chunk for LLM topic identification")
	flag.IntVar(&config.OverlapPages, "overlap-pages", 3, "Overlapping pages between chunks")
	flag.IntVar(&config.BatchDelay, "batch-delay", 2, "Seconds to wait between generation batches")
	flag.BoolVar(&config.TopicsOnly, "topics-only", false, "Identify topics and exit without generating questions")
	flag.Parse()

	// Load config file if specified
	if cfg, err := cfgPkg.LoadConfig(configPath); err == nil {
		if config.ProviderName == "" {
			config.ProviderName = cfg.Provider.Name
		}
		if config.DBUrl == "" {
			config.DBUrl = cfg.Database.URL
		}
		if flag.Lookup("toc-threshold").Value.String() == "0.4" {
			config.TOCThreshold = cfg.Topics.TOCThreshold
		}
		if flag.Lookup("chunk-pages").Value.String() == "30" {
			config.ChunkPages = cfg.Topics.ChunkPages
		}
		if flag.Lookup("overlap-pages").Value.String() == "3" {
			config.OverlapPages = cfg.Topics.OverlapPages
		}
		if flag.Lookup("batch-delay").Value.String() == "2" {
			config.BatchDelay = cfg.Questions.BatchDelaySeconds
		}
	}

	return config
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("topics"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config) error {
	if config.InputPath == "" {
		return fmt.Errorf("missing -input: path to a page-marked OCR text file")
	}

	data, err := os.ReadFile(config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %v", err)
	}
	text := string(data)
	totalPages := pageindex.TotalPages(text)

	if config.ProviderName != "" {
		os.Setenv("LLM_PROVIDER", config.ProviderName)
	}
	llmProvider, err := provider.FromEnv()
	if err != nil {
		return err
	}

	color.Blue("\nProcessing %s (%d pages) with provider %s\n", config.InputPath, totalPages, llmProvider.Name())

	ctx := context.Background()

	// Topic identification cascade
	var bar *progressbar.ProgressBar
	progress := func(stage string, current, total int, metadata string) {
		switch stage {
		case topics.StageTopics:
			color.Green("✓ Identified %d topics (%s)\n", total, metadata)
		case questions.StageBatch:
			if bar == nil {
				bar = getProgressBar(total, "🧠 Generating questions...")
			}
			bar.Set(current - 1)
			bar.Describe(color.BlueString("🧠 Generating questions (%s)...", metadata))
		}
	}

	orchestrator := topics.New([]types.TopicStrategy{
		toc.NewWithConfig(toc.DetectorConfig{Threshold: config.TOCThreshold}),
		structural.NewWithConfig(structural.AnalyzerConfig{}),
		semantic.NewWithConfig(llmProvider, semantic.IdentifierConfig{
			ChunkPages:   config.ChunkPages,
			OverlapPages: config.OverlapPages,
		}),
	}, progress)

	topicMap := orchestrator.Identify(ctx, text, totalPages)
	for _, t := range topicMap.Topics {
		fmt.Printf("  - %s (pages %d-%d)\n", t.Name, t.Start, t.End)
	}

	if config.TopicsOnly {
		return writeJSON(config.OutputPath, topicMap)
	}

	topicTexts := topics.ExtractTopicTexts(text, topicMap)

	// Optional persistence: the database supplies the topic→domain
	// mapping; without it we synthesize one so generation still runs.
	var pgStore *store.Store
	var sessionID string
	domainMapping := make(map[string]string, len(topicMap.Topics))

	if config.DBUrl != "" {
		pgStore, err = store.NewWithConfig(store.Config{ConnString: config.DBUrl})
		if err != nil {
			return fmt.Errorf("failed to initialize store: %v", err)
		}
		defer pgStore.Close()

		sessionID, err = pgStore.CreateSession(ctx, config.InputPath, "")
		if err != nil {
			return err
		}
		if err := pgStore.SaveTopics(ctx, sessionID, topicMap.Topics); err != nil {
			return err
		}
		domainMapping, err = pgStore.CreateDomains(ctx, sessionID, topicMap.Topics)
		if err != nil {
			return err
		}
	} else {
		for _, t := range topicMap.Topics {
			domainMapping[t.Name] = t.Name
		}
	}

	// A session that exists must not be left in ai_processing on failure.
	fail := func(err error) error {
		if pgStore != nil {
			if saveErr := pgStore.SaveError(ctx, sessionID, err.Error()); saveErr != nil {
				log.Printf("failed to record session error: %v", saveErr)
			}
		}
		return err
	}

	generator := questions.New(llmProvider, pacer.NewFixedDelay(time.Duration(config.BatchDelay)*time.Second), progress)
	generated, err := generator.Generate(ctx, topicTexts, domainMapping)
	if err != nil {
		return fail(err)
	}
	if bar != nil {
		bar.Finish()
	}
	color.Green("\n✓ Generated %d questions\n", len(generated))

	if pgStore != nil {
		if err := pgStore.SaveQuestions(ctx, sessionID, generated); err != nil {
			return fail(err)
		}
		if err := pgStore.UpdateSessionStatus(ctx, sessionID, "completed"); err != nil {
			return err
		}
		color.Green("✓ Saved to database (session %s)\n", sessionID)
	}

	return writeJSON(config.OutputPath, generated)
}

func writeJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %v", err)
	}

	if path == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %v", err)
	}
	color.Green("✓ Wrote %s\n", path)
	return nil
}
