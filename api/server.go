package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"artwork-tracker/db"
	"artwork-tracker/models"
	"artwork-tracker/orchestrator"
	"artwork-tracker/scheduler"

	"github.com/gorilla/mux"
)

// Server exposes a small HTTP surface for health checks, browsing
// stored artworks and triggering passes by hand.
type Server struct {
	orch     *orchestrator.Orchestrator
	database *db.DB
	sched    *scheduler.Scheduler
	http     *http.Server
}

// New builds the server. database and sched may be nil; the matching
// endpoints then report unavailable.
func New(addr string, orch *orchestrator.Orchestrator, database *db.DB, sched *scheduler.Scheduler) *Server {
	s := &Server{orch: orch, database: database, sched: sched}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/artworks", s.handleArtworks).Methods(http.MethodGet)
	r.HandleFunc("/runs/last", s.handleLastRun).Methods(http.MethodGet)
	r.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodPost)
	r.HandleFunc("/scrape/{platform}", s.handleScrapePlatform).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start runs the listener. Blocks until the server shuts down.
func (s *Server) Start() error {
	log.Printf("API server listening on %s\n", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v\n", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"platforms": s.orch.Platforms(),
	})
}

func (s *Server) handleArtworks(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database not configured"})
		return
	}

	artworks, err := s.database.GetRecent(50)
	if err != nil {
		log.Printf("Error: failed to load artworks: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load artworks"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(artworks),
		"artworks": artworks,
	})
}

func (s *Server) handleLastRun(w http.ResponseWriter, _ *http.Request) {
	if s.database == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database not configured"})
		return
	}

	run, err := s.database.LastRun()
	if err != nil {
		log.Printf("Error: failed to load last run: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load last run"})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs recorded"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleScrape kicks off a full pass in the background; the scheduler's
// single-flight guard prevents overlap with a timed pass.
func (s *Server) handleScrape(w http.ResponseWriter, _ *http.Request) {
	if s.sched == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "scheduler not configured"})
		return
	}

	go s.sched.RunOnce(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scrape pass started"})
}

func (s *Server) handleScrapePlatform(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(mux.Vars(r)["platform"])

	results, err := s.orch.RunScraper(r.Context(), platform)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	type entry struct {
		Title      string             `json:"title"`
		URL        string             `json:"url"`
		Confidence float64            `json:"confidence"`
		Signals    map[string]float64 `json:"signals"`
	}
	entries := make([]entry, 0, len(results))
	for _, result := range results {
		entries = append(entries, entry{
			Title:      result.Listing.Title,
			URL:        result.Listing.SourceURL,
			Confidence: result.ConfidenceScore,
			Signals:    result.PositiveSignals,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"platform": platform,
		"count":    len(entries),
		"results":  entries,
	})
}
