package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/config"
	"github.com/vinwatch/wine-deals-bot/internal/dedup"
	"github.com/vinwatch/wine-deals-bot/internal/filter"
	"github.com/vinwatch/wine-deals-bot/internal/models"
	"github.com/vinwatch/wine-deals-bot/internal/notifications"
	"github.com/vinwatch/wine-deals-bot/internal/sources"
	"github.com/vinwatch/wine-deals-bot/internal/storage"
)

// Service runs one scrape-filter-notify cycle across all retailer adapters
type Service struct {
	config   *config.Config
	adapters []sources.Adapter
	store    *dedup.Store
	notifier notifications.Notifier
	backend  storage.Backend

	// runMu serializes runs: in serve mode the cron job and a manual
	// trigger can overlap, and the seen-set is not safe for concurrent use
	runMu sync.Mutex

	mu         sync.RWMutex
	lastReport *models.RunReport
}

// NewService creates a new run orchestrator
func NewService(cfg *config.Config, adapters []sources.Adapter, store *dedup.Store, notifier notifications.Notifier, backend storage.Backend) *Service {
	return &Service{
		config:   cfg,
		adapters: adapters,
		store:    store,
		notifier: notifier,
		backend:  backend,
	}
}

// fetchResult carries one adapter's outcome across the fan-in channel
type fetchResult struct {
	source   string
	listings []models.Listing
	err      error
}

// Run performs one complete cycle: fetch from every adapter concurrently,
// validate and filter the merged batch, drop already-seen matches, notify
// on the rest, and persist the seen-set once at the end. An adapter failure
// never aborts the run; a notify failure leaves that listing eligible for
// the next run; a seen-set save failure is the most serious outcome and is
// surfaced in both the report and the returned error. Overlapping
// invocations (cron firing during a manual trigger) are serialized, since
// the seen-set is not safe for concurrent use.
func (s *Service) Run(ctx context.Context) (*models.RunReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	logrus.Info("Starting deal check")

	report := &models.RunReport{
		StartedAt: start,
		Sources:   make(map[string]*models.SourceReport),
	}
	for _, adapter := range s.adapters {
		report.Sources[adapter.Name()] = &models.SourceReport{}
	}

	if err := s.store.Load(); err != nil {
		// Empty seen-set risks duplicate texts, never lost ones
		logrus.Warnf("Seen-set load failed, continuing with empty set: %v", err)
		report.StoreWarnings = append(report.StoreWarnings, err.Error())
	}

	matches := s.collectMatches(ctx, report)

	// Best deals first, matching what the cap should keep
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DiscountPct > matches[j].DiscountPct
	})

	s.notifyMatches(matches, report)

	if err := s.store.Save(); err != nil {
		logrus.Errorf("Seen-set save failed, future runs may re-send alerts: %v", err)
		report.StoreError = err.Error()
	}

	report.Duration = time.Since(start).String()
	s.persistReport(report)

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	logrus.Infof("Deal check completed in %v: %s", time.Since(start), report.Summary())

	if report.StoreError != "" {
		return report, fmt.Errorf("seen-set save failed: %s", report.StoreError)
	}
	return report, nil
}

// collectMatches fans out one goroutine per adapter, joins the results and
// returns the validated, preference-matching listings from the merged batch
func (s *Service) collectMatches(ctx context.Context, report *models.RunReport) []models.Listing {
	prefs := s.config.Normalized()
	timeout := time.Duration(s.config.FetchTimeoutSeconds) * time.Second

	var wg sync.WaitGroup
	results := make(chan fetchResult, len(s.adapters))

	for _, adapter := range s.adapters {
		if !adapter.IsEnabled() {
			logrus.Debugf("Skipping disabled adapter %s", adapter.Name())
			continue
		}

		wg.Add(1)
		go func(a sources.Adapter) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			logrus.Debugf("Fetching listings from %s", a.Name())
			listings, err := a.Fetch(fetchCtx)
			results <- fetchResult{source: a.Name(), listings: listings, err: err}
		}(adapter)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var matches []models.Listing
	for result := range results {
		src := report.Sources[result.source]

		if result.err != nil {
			logrus.Errorf("Fetch from %s failed: %v", result.source, result.err)
			src.Error = result.err.Error()
			continue
		}

		src.Scanned = len(result.listings)
		report.TotalScanned += len(result.listings)
		logrus.Infof("Scanned %d listings from %s", len(result.listings), result.source)

		for _, listing := range result.listings {
			if err := filter.Validate(listing); err != nil {
				logrus.Warnf("Dropping invalid listing: %v", err)
				src.Invalid++
				report.TotalInvalid++
				continue
			}

			if filter.Matches(listing, prefs) {
				src.Matches++
				report.TotalMatches++
				matches = append(matches, listing)
			}
		}
	}

	return matches
}

// notifyMatches sends an alert for each new match, up to the per-run cap.
// Only successfully notified listings are marked seen; failed or capped
// ones stay eligible so a real deal is never silently lost.
func (s *Service) notifyMatches(matches []models.Listing, report *models.RunReport) {
	for _, listing := range matches {
		if !s.store.IsNew(listing.Key()) {
			logrus.Debugf("Already notified, skipping: %s", listing.Name)
			continue
		}
		report.NewMatches++

		if !s.notifier.IsEnabled() {
			logrus.Infof("DEAL (sms not configured): %s | $%.2f (%d%% off) | %s",
				listing.Name, listing.Price, listing.DiscountPct, listing.URL)
			continue
		}

		if report.Notified >= s.config.MaxSMSPerRun {
			logrus.Infof("SMS cap reached, deferring: %s", listing.Name)
			continue
		}

		if err := s.notifier.SendDeal(listing); err != nil {
			logrus.Errorf("Notification failed for %s: %v", listing.Key(), err)
			report.NotifyErrors = append(report.NotifyErrors, err.Error())
			continue
		}

		s.store.MarkSeen(listing.Key())
		report.Notified++
	}
}

// persistReport stores the run report alongside the seen-set, best effort
func (s *Service) persistReport(report *models.RunReport) {
	data, err := json.Marshal(report)
	if err != nil {
		logrus.Errorf("Failed to marshal run report: %v", err)
		return
	}

	filename := fmt.Sprintf("report-%s.json", report.StartedAt.UTC().Format("2006-01-02-15-04-05"))
	if err := s.backend.Store(filename, data); err != nil {
		logrus.Errorf("Failed to store run report: %v", err)
	}
}

// LastReport returns the most recent run report, or nil before the first run
func (s *Service) LastReport() *models.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}
