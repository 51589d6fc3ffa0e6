// Command reconcile resolves a batch of free-text product descriptions
// (invoice lines, quotation items) against a tenant's catalog and prints a
// matched/unmatched report for manual review.
//
// Input is a plain text file (one description per line), a CSV/XLSX table
// (code, description columns), or stdin. Unmatched lines never abort the
// run; only a catalog load failure does.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	matchingapp "github.com/higiplas/backend/internal/application/matching"
	"github.com/higiplas/backend/internal/domain/matching"
	"github.com/higiplas/backend/internal/infrastructure/cache"
	"github.com/higiplas/backend/internal/infrastructure/config"
	"github.com/higiplas/backend/internal/infrastructure/importer"
	"github.com/higiplas/backend/internal/infrastructure/logger"
	"github.com/higiplas/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		tenantFlag     = flag.String("tenant", "", "tenant ID (required)")
		inputFlag      = flag.String("input", "-", "input file (.txt, .csv, .xlsx) or - for stdin")
		thresholdFlag  = flag.Float64("threshold", -1, "minimum composite score 0-100 (default from config)")
		topFlag        = flag.Int("top", 0, "matches to report per description (default from config)")
		skipHeaderFlag = flag.Bool("skip-header", false, "skip the first input row")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	tenantID, err := uuid.Parse(*tenantFlag)
	if err != nil {
		log.Fatal("invalid or missing -tenant", zap.Error(err))
	}

	threshold := cfg.Matching.Threshold
	if *thresholdFlag >= 0 {
		threshold = *thresholdFlag
	}
	top := cfg.Matching.TopK
	if *topFlag > 0 {
		top = *topFlag
	}

	lines, err := readInput(*inputFlag, *skipHeaderFlag)
	if err != nil {
		log.Fatal("failed to read input", zap.Error(err))
	}
	if len(lines) == 0 {
		log.Warn("no input lines to reconcile")
		return
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to product store", zap.Error(err))
	}
	defer db.Close()

	resolver := buildResolver(cfg, db, log)
	ctx, ctxLog := logger.WithTenantID(context.Background(), log, tenantID.String())

	matched, unmatched := 0, 0
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tMETHOD\tSCORE\tINPUT\tPRODUCT")

	for _, line := range lines {
		results, err := resolveLine(ctx, resolver, tenantID, line, threshold, top)
		if err != nil {
			ctxLog.Fatal("catalog unavailable", zap.Error(err))
		}

		if len(results) == 0 || !results[0].Matched() {
			unmatched++
			fmt.Fprintf(w, "UNMATCHED\t-\t-\t%s\t-\n", describe(line))
			continue
		}
		matched++
		for _, r := range results {
			if !r.Matched() {
				continue
			}
			fmt.Fprintf(w, "MATCHED\t%s\t%.1f\t%s\t%s (%s)\n",
				r.Method, r.Score, describe(line), r.Entry.Name, r.Entry.ID)
		}
	}
	w.Flush()

	fmt.Printf("\n%d matched, %d unmatched of %d lines (threshold %.0f)\n",
		matched, unmatched, len(lines), threshold)
	if unmatched > 0 {
		fmt.Println("unmatched lines need manual reconciliation")
	}
}

// buildResolver wires the gorm source, catalog cache, and matcher.
func buildResolver(cfg *config.Config, db *persistence.Database, log *zap.Logger) *matchingapp.ResolverService {
	source := persistence.NewGormCatalogSource(db.DB)
	catalogs := cache.NewCatalogCache(source,
		cache.WithCacheLogger(log),
		cache.WithCacheTTL(cfg.Matching.CacheTTL),
	)
	matcher := matching.NewMatcher(
		matching.WithWeights(matching.Weights{
			Ratio:        cfg.Matching.WeightRatio,
			PartialRatio: cfg.Matching.WeightPartialRatio,
			TokenSort:    cfg.Matching.WeightTokenSort,
			TokenSet:     cfg.Matching.WeightTokenSet,
			Keyword:      cfg.Matching.WeightKeyword,
		}),
		matching.WithLogger(log),
	)
	return matchingapp.NewResolverService(catalogs, matcher,
		matchingapp.WithServiceLogger(log))
}

func readInput(path string, skipHeader bool) ([]importer.Line, error) {
	if path == "-" || path == "" {
		return importer.ReadPlain(os.Stdin, skipHeader)
	}
	return importer.ReadFile(path, skipHeader)
}

// resolveLine uses the code-first path when the line carries a code, and
// top-K fuzzy resolution otherwise.
func resolveLine(ctx context.Context, resolver *matchingapp.ResolverService, tenantID uuid.UUID, line importer.Line, threshold float64, top int) ([]matching.MatchResult, error) {
	if line.Code != "" {
		result, err := resolver.Resolve(ctx, tenantID, line.Code, line.Description, threshold)
		if err != nil {
			return nil, err
		}
		return []matching.MatchResult{result}, nil
	}
	return resolver.ResolveByName(ctx, tenantID, line.Description, threshold, top)
}

func describe(line importer.Line) string {
	if line.Code != "" {
		return line.Code + " " + line.Description
	}
	return line.Description
}
