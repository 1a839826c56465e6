package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ALTERAPICKS/nba/internal/classify"
	"github.com/ALTERAPICKS/nba/internal/config"
	"github.com/ALTERAPICKS/nba/internal/espn"
	"github.com/ALTERAPICKS/nba/internal/ledger"
	"github.com/ALTERAPICKS/nba/internal/model"
	"github.com/ALTERAPICKS/nba/internal/pipeline"
	"github.com/ALTERAPICKS/nba/internal/predictions"
	"github.com/ALTERAPICKS/nba/internal/resolve"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nba-outcomes",
		Short:         "Evaluate stored NBA model picks against final scores",
		Long:          "nba-outcomes matches saved model projections to completed games, scores each pick against the closing line, and appends the verdicts to the append-only performance ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(evaluateCmd())
	root.AddCommand(logCmd())
	return root
}

// setup loads configuration and wires the logger and ledger store shared by
// every subcommand. The returned close func releases the store.
func setup() (*config.Config, ledger.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	csvStore, err := ledger.NewCSVStore(cfg.LedgerPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var store ledger.Store = csvStore
	if cfg.LedgerDSN != "" {
		mirror, err := ledger.NewPostgresStore(cfg.LedgerDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting ledger mirror: %w", err)
		}
		store = &ledger.MirroredStore{Primary: csvStore, Mirror: mirror}
	}

	return cfg, store, func() { _ = store.Close() }, nil
}

func evaluateCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one date's predictions and append the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, closeStore, err := setup()
			if err != nil {
				return err
			}
			defer closeStore()

			if date == "" {
				date = time.Now().AddDate(0, 0, -1).Format(model.DateLayout)
			}

			pushPolicy := resolve.PushPolicy(cfg.PushPolicy)
			if !pushPolicy.Valid() {
				return fmt.Errorf("unknown push policy %q", cfg.PushPolicy)
			}

			client := espn.NewClient(espn.ClientOptions{
				RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
				RequestsPerSec:  cfg.RequestsPerSec,
				MaxRetries:      cfg.MaxRetries,
				MaxRetryTimeout: time.Duration(cfg.MaxRetryTimeout) * time.Second,
			})

			run := pipeline.New(store, client, predictions.NewLoader(cfg.PredictionsDir), pipeline.Options{
				PushPolicy: pushPolicy,
				Thresholds: classify.Thresholds{
					CloseGameMargin:  cfg.CloseGameMargin,
					HighScoringTotal: cfg.HighScoringTotal,
				},
			})

			summary, err := run.Run(cmd.Context(), date)
			if err != nil {
				return err
			}

			fmt.Printf("Evaluated %s: %d game(s), %d pick(s) written, %d skipped, %d failed\n",
				summary.Date, summary.Games, summary.Written, summary.SkippedTotal(), summary.Failed)
			for reason, count := range summary.Skipped {
				fmt.Printf("  skipped %d: %s\n", count, reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Evaluation date YYYY-MM-DD (default: yesterday)")
	return cmd
}

func logCmd() *cobra.Command {
	var (
		rec      model.PerformanceRecord
		pick     string
		variance string
		injury   string
		band     string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Validate and append one hand-entered record",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, closeStore, err := setup()
			if err != nil {
				return err
			}
			defer closeStore()

			rec.PickType = model.PickType(pick)
			rec.VarianceFlag = model.VarianceFlag(variance)
			rec.InjuryFlag = model.InjuryFlag(injury)
			rec.ConfidenceBand = model.ConfidenceBand(band)

			if err := pipeline.AppendManual(cmd.Context(), store, rec); err != nil {
				return err
			}

			fmt.Printf("Logged %s %s %s\n", rec.Date, rec.GameID, rec.PickType)
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.Date, "date", "", "Game date YYYY-MM-DD")
	cmd.Flags().StringVar(&rec.GameID, "game", "", "Game ID, AWAY@HOME")
	cmd.Flags().StringVar(&pick, "pick", "", "Pick type")
	cmd.Flags().Float64Var(&rec.EdgePoints, "edge", 0, "Edge in points")
	cmd.Flags().Float64Var(&rec.ModelLine, "model-line", 0, "Model line")
	cmd.Flags().Float64Var(&rec.MarketLine, "market-line", 0, "Closing market line")
	cmd.Flags().BoolVar(&rec.ResultCorrect, "correct", false, "Whether the pick was correct")
	cmd.Flags().StringVar(&variance, "variance", string(model.VarianceNormal), "Variance flag: normal or high_variance")
	cmd.Flags().StringVar(&injury, "injury", string(model.InjuryNone), "Injury flag: none, minor or major")
	cmd.Flags().StringVar(&band, "band", "", "Confidence band (derived from edge when omitted)")
	cmd.Flags().StringVar(&rec.Notes, "notes", "", "Free-text notes")

	for _, required := range []string{"date", "game", "pick"} {
		_ = cmd.MarkFlagRequired(required)
	}
	return cmd
}
