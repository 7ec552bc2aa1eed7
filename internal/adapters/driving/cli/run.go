package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	llmopenai "github.com/custodia-labs/briefcast/internal/adapters/driven/llm/openai"
	speechopenai "github.com/custodia-labs/briefcast/internal/adapters/driven/speech/openai"
	"github.com/custodia-labs/briefcast/internal/config"
	"github.com/custodia-labs/briefcast/internal/connectors/google"
	"github.com/custodia-labs/briefcast/internal/connectors/google/calendar"
	"github.com/custodia-labs/briefcast/internal/connectors/google/gmail"
	"github.com/custodia-labs/briefcast/internal/connectors/hackernews"
	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/core/services"
	"github.com/custodia-labs/briefcast/internal/logger"
	"github.com/custodia-labs/briefcast/internal/processors/html"
	"github.com/custodia-labs/briefcast/internal/processors/ics"
	"github.com/custodia-labs/briefcast/internal/processors/pdf"
	"github.com/custodia-labs/briefcast/internal/processors/plaintext"
	"github.com/custodia-labs/briefcast/internal/scriptwriter"
	"github.com/custodia-labs/briefcast/internal/storage/file"
	"github.com/custodia-labs/briefcast/internal/storage/sqlite"
	"github.com/custodia-labs/briefcast/internal/synth"
)

var skipCleanup bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch new documents and turn each into a podcast episode",
	Long: `Fetches documents from every enabled source, generates a dialogue
script per document, synthesizes it to audio, and writes one audio
file plus one transcript per document. Documents already processed in
a previous run are skipped.`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().BoolVar(&skipCleanup, "skip-cleanup", false,
		"keep artifacts and state entries older than the retention period")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	apiKey, err := config.LoadEnv(configPath)
	if err != nil {
		return err
	}

	fetchers, err := buildFetchers(ctx, cfg)
	if err != nil {
		return err
	}
	if len(fetchers) == 0 {
		return domain.ErrNoFetchers
	}

	registry := buildRegistry()

	llm, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
		APIKey:  apiKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("llm service: %w", err)
	}
	defer llm.Close()

	writer, err := scriptwriter.New(llm, scriptwriter.Config{Voices: cfg.Speech.Voices})
	if err != nil {
		return fmt.Errorf("scriptwriter: %w", err)
	}

	speech, err := speechopenai.NewSpeechService(speechopenai.SpeechConfig{APIKey: apiKey})
	if err != nil {
		return fmt.Errorf("speech service: %w", err)
	}
	defer speech.Close()

	synthesizer := synth.New(speech, synth.Config{
		Model:             cfg.Speech.Model,
		DefaultVoice:      cfg.Speech.DefaultVoice,
		MaxAttempts:       cfg.Speech.MaxAttempts,
		RequestsPerSecond: cfg.Speech.RequestsPerSecond,
		Burst:             cfg.Speech.Burst,
	})

	artifacts, err := file.NewStore(cfg.Output.AudioDir, cfg.Output.TranscriptDir)
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}

	state, err := sqlite.NewStateStore(cfg.Output.StateDB)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	defer state.Close()

	pipeline := services.NewPipeline(fetchers, registry, writer, synthesizer, artifacts, state,
		services.PipelineConfig{
			MaxChunkSize: cfg.Speech.MaxChunkSize,
			Concurrency:  cfg.Pipeline.Concurrency,
		})

	since := time.Now().Add(-time.Duration(cfg.Pipeline.LookbackHours) * time.Hour)
	summary, err := pipeline.Run(ctx, since)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	printSummary(cmd, summary)

	if !skipCleanup && cfg.Output.RetentionHours > 0 {
		retention := time.Duration(cfg.Output.RetentionHours) * time.Hour
		if _, err := artifacts.CleanupOld(retention); err != nil {
			logger.Warn("artifact cleanup: %v", err)
		}
		if _, err := state.Prune(context.Background(), retention); err != nil {
			logger.Warn("state prune: %v", err)
		}
	}

	if summary.Failed() > 0 && summary.Succeeded()+summary.Degraded() == 0 && len(summary.Results) > 0 {
		return fmt.Errorf("all %d document(s) failed", summary.Failed())
	}
	return nil
}

func buildFetchers(ctx context.Context, cfg config.Config) ([]driven.Fetcher, error) {
	var fetchers []driven.Fetcher

	if cfg.Sources.Gmail.Enabled || cfg.Sources.Calendar.Enabled {
		ts, err := google.NewTokenSource(ctx,
			cfg.Sources.Gmail.CredentialsFile, cfg.Sources.Gmail.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("google credentials: %w", err)
		}

		if cfg.Sources.Gmail.Enabled {
			svc, err := google.NewGmailService(ctx, ts)
			if err != nil {
				return nil, fmt.Errorf("gmail service: %w", err)
			}
			fetchers = append(fetchers, gmail.NewFetcher(svc, gmail.Config{
				SupportedAttachments: cfg.Sources.Gmail.SupportedAttachments,
				Query:                cfg.Sources.Gmail.Query,
				MaxResults:           cfg.Sources.Gmail.MaxResults,
			}))
		}

		if cfg.Sources.Calendar.Enabled {
			svc, err := google.NewCalendarService(ctx, ts)
			if err != nil {
				return nil, fmt.Errorf("calendar service: %w", err)
			}
			fetchers = append(fetchers, calendar.NewFetcher(svc, calendar.Config{
				CalendarID:    cfg.Sources.Calendar.CalendarID,
				LookAheadDays: cfg.Sources.Calendar.LookAheadDays,
			}))
		}
	}

	if cfg.Sources.HackerNews.Enabled {
		fetchers = append(fetchers, hackernews.NewFetcher(hackernews.Config{
			FeedURL:    cfg.Sources.HackerNews.FeedURL,
			MinScore:   cfg.Sources.HackerNews.MinScore,
			MaxStories: cfg.Sources.HackerNews.MaxStories,
		}))
	}

	return fetchers, nil
}

func buildRegistry() *services.ProcessorRegistry {
	registry := services.NewProcessorRegistry()
	registry.Register(plaintext.New())
	registry.Register(html.New())
	registry.Register(ics.New())

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("PDF support disabled: %v", err)
		logger.Warn("%s", pdf.InstallInstructions())
	} else {
		registry.Register(pdf.New())
	}
	return registry
}

func printSummary(cmd *cobra.Command, summary services.Summary) {
	for _, r := range summary.Results {
		switch {
		case r.State == domain.StateFailed:
			cmd.Printf("  failed    %-40s stage=%s err=%v\n", r.Document.Title, r.Stage, r.Err)
		case r.Degraded():
			cmd.Printf("  degraded  %-40s missing chunks %v\n      %s\n",
				r.Document.Title, r.MissingChunks, r.AudioPath)
		default:
			cmd.Printf("  ok        %-40s %d chunk(s)\n      %s\n",
				r.Document.Title, r.Chunks, r.AudioPath)
		}
	}

	for source, err := range summary.FetchErrors {
		cmd.Printf("  fetch failed for %s: %v\n", source, err)
	}

	cmd.Printf("\nrun %s: %d succeeded, %d degraded, %d failed, %d skipped (%.1fs)\n",
		summary.RunID,
		summary.Succeeded(), summary.Degraded(), summary.Failed(), summary.Skipped,
		summary.Finished.Sub(summary.Started).Seconds())
}
