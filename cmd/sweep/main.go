// Command sweep invalidates classification cache entries in bulk, either by
// file name pattern or by age, so the next upload is reclassified with the
// latest corrections.
// Usage: go run ./cmd/sweep -pattern "track record" [-client-type fund] [-older-than-days 90]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"filewise/internal/config"
	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/repository/postgres"
	"filewise/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		pattern    = flag.String("pattern", "", "Invalidate entries whose file name pattern contains this text")
		clientType = flag.String("client-type", "", "Only entries for this client type")
		olderThan  = flag.Int("older-than-days", 0, "Invalidate entries not used for this many days")
	)
	flag.Parse()

	filter := domain.CacheInvalidationFilter{Pattern: *pattern, ClientType: *clientType}
	if *olderThan > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -*olderThan)
		filter.OlderThan = &cutoff
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appLog, err := logger.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer appLog.Sync()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	cacheSvc := service.NewClassificationCacheService(postgres.NewCacheRepo(db), appLog)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := cacheSvc.InvalidateByPattern(ctx, filter)
	if err != nil {
		return fmt.Errorf("sweeping cache: %w", err)
	}

	stats, err := cacheSvc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}
	appLog.Info("sweep.run: done",
		"invalidated", n,
		"valid_entries", stats.ValidEntries,
		"invalid_entries", stats.InvalidEntries,
	)
	return nil
}
