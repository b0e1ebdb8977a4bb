package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"score-ledger/core/config"
	"score-ledger/core/database"
	"score-ledger/core/logger"
	"score-ledger/core/metrics"
	"score-ledger/core/storage"
	"score-ledger/feature/chat"
	"score-ledger/feature/comparison"
	"score-ledger/feature/ledger"
	"score-ledger/feature/score"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultRuleVersion names the stock rule used when no rule file exists.
const defaultRuleVersion = "default"

// app bundles what every command needs after configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *ledger.Store
	rules  *score.RuleContext
	set    *score.RuleSet
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// loadRules reads the rule file. A missing file falls back to the stock four-player rule.
func loadRules(cfg score.Config, l *zap.Logger) (*score.RuleSet, *score.RuleContext, error) {
	set, err := score.LoadRuleSet(cfg.RuleFile)
	if errors.Is(err, fs.ErrNotExist) {
		l.Warn("Rule file not found, using the stock rule", zap.String("path", cfg.RuleFile))
		version := cfg.RuleVersion
		if version == "" {
			version = defaultRuleVersion
		}
		set, err = score.NewRuleSet(version), nil
	}
	if err != nil {
		return nil, nil, err
	}
	rules, err := score.NewRuleContext(cfg, set)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select rule: %w", err)
	}
	return set, rules, nil
}

// bootstrap loads configuration, connects to the ledger and reads the rule file.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, l, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	store := ledger.NewStore(db, l)
	if err := store.AutoMigrate(ctx); err != nil {
		return nil, err
	}

	set, rules, err := loadRules(cfg.Score, l)
	if err != nil {
		return nil, err
	}
	l.Info("Rule loaded", zap.String("version", rules.Rule.Version), zap.Int("mode", rules.Rule.Mode))

	return &app{cfg: cfg, logger: l, db: db, store: store, rules: rules, set: set}, nil
}

// comparisonService wires the chat archive and its markers to a sweep service.
func (a *app) comparisonService(ctx context.Context, client storage.Client, m *metrics.Metrics) (*comparison.Service, error) {
	bucket := a.cfg.Storage.Bucket
	created, err := storage.EnsureBucket(ctx, client, bucket, a.cfg.Storage.Region)
	if err != nil {
		return nil, err
	}
	if created {
		a.logger.Info("Bucket created", zap.String("bucket", bucket))
	}

	cc := a.cfg.Comparison
	source := chat.NewArchive(client, bucket, cc, a.logger)
	var feedback comparison.FeedbackPort = chat.NewMarkers(client, bucket, cc.ChannelID, a.logger)
	feedback = chat.NewRateLimited(feedback, cc.FeedbackRate, cc.FeedbackBurst)
	feedback = comparison.InstrumentFeedback(feedback, m)

	engine := comparison.NewEngine(a.rules, a.store, source, feedback, cc, a.logger)
	return comparison.NewService(engine, client, bucket, m, a.logger), nil
}
