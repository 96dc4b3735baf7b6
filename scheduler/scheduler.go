package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"artwork-tracker/db"
	"artwork-tracker/filter"
	"artwork-tracker/notify"
	"artwork-tracker/orchestrator"
	"artwork-tracker/sheets"
)

// Scheduler runs full scrape passes on a fixed interval. The database,
// notifier and sheets writer are optional: a nil dependency just skips
// that step.
type Scheduler struct {
	orch     *orchestrator.Orchestrator
	database *db.DB
	notifier *notify.Notifier
	writer   *sheets.Writer
	interval time.Duration
	minScore float64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a scheduler that fires every interval. minScore is the
// confidence floor for notifications.
func New(orch *orchestrator.Orchestrator, database *db.DB, notifier *notify.Notifier, writer *sheets.Writer, interval time.Duration, minScore float64) *Scheduler {
	return &Scheduler{
		orch:     orch,
		database: database,
		notifier: notifier,
		writer:   writer,
		interval: interval,
		minScore: minScore,
	}
}

// Start launches the scheduling loop. The first pass runs immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx)
	log.Printf("Scheduler started: interval=%s\n", s.interval)
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one full pass: scrape, score, persist, notify,
// export. Concurrent invocations are collapsed; the pass already in
// flight wins.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("Scrape pass already in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	var runID int64
	if s.database != nil {
		id, err := s.database.StartRun(time.Now())
		if err != nil {
			log.Printf("Warning: failed to record scrape run: %v\n", err)
		} else {
			runID = id
		}
	}

	results, stats, err := s.orch.RunAll(ctx)
	if err != nil {
		log.Printf("Error: scrape pass aborted: %v\n", err)
		if s.database != nil && runID != 0 {
			if ferr := s.database.FinishRun(runID, stats.TotalCollected, stats.Passed, 0, err); ferr != nil {
				log.Printf("Warning: failed to finish scrape run record: %v\n", ferr)
			}
		}
		return
	}

	newResults := s.persist(runID, results, stats)
	s.notifyAndExport(newResults)
}

// persist stores the pass and returns only the results that were new to
// the database. Without a database every result counts as new.
func (s *Scheduler) persist(runID int64, results []filter.ScoringResult, stats orchestrator.RunStats) []filter.ScoringResult {
	if s.database == nil {
		return results
	}

	var newResults []filter.ScoringResult
	newCount := 0
	for _, result := range results {
		id, err := s.database.SaveResult(result)
		if err != nil {
			log.Printf("Error: failed to save artwork: url=%s err=%v\n", result.Listing.SourceURL, err)
			continue
		}
		if id != 0 {
			newCount++
			newResults = append(newResults, result)
		}
	}
	log.Printf("Persisted scrape pass: total=%d new=%d\n", len(results), newCount)

	if runID != 0 {
		if err := s.database.FinishRun(runID, stats.TotalCollected, stats.Passed, newCount, nil); err != nil {
			log.Printf("Warning: failed to finish scrape run record: %v\n", err)
		}
	}

	return newResults
}

func (s *Scheduler) notifyAndExport(newResults []filter.ScoringResult) {
	if len(newResults) == 0 {
		return
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyNewFinds(newResults, s.minScore); err != nil {
			log.Printf("Warning: failed to send Telegram notification: %v\n", err)
		}
	}
	if s.writer != nil {
		if _, err := s.writer.CreateRunSheet(newResults); err != nil {
			log.Printf("Warning: failed to export to Google Sheets: %v\n", err)
		}
	}
}
