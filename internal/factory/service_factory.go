package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ignorelist"
	"github.com/mikey/applytrack/internal/utils"
)

// NewIgnoreList creates the sender ignore list from tracker.ignored_domains
func NewIgnoreList(cfg *config.Config, logger *zap.Logger) *ignorelist.Checker {
	return ignorelist.NewChecker(cfg.GetStringSlice("tracker.ignored_domains"), logger)
}

// NewTrackerService creates the run service from the search and tracker sections
func NewTrackerService(
	cfg *config.Config,
	ignored *ignorelist.Checker,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) (*core.TrackerService, error) {
	trackerCfg, err := cfg.GetTracker()
	if err != nil {
		return nil, err
	}

	search := cfg.GetSearch()
	query := core.SearchQuery{After: search.After, Subjects: search.Subjects}.String()

	logger.Debug("Search query", zap.String("query", query))

	return core.NewTrackerService(
		query,
		ignored,
		textProcessor,
		logger,
		trackerCfg.CallTimeout,
		trackerCfg.MinInterval,
	), nil
}
