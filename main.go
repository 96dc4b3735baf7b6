package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"artwork-tracker/api"
	"artwork-tracker/config"
	"artwork-tracker/db"
	"artwork-tracker/filter"
	"artwork-tracker/models"
	"artwork-tracker/notify"
	"artwork-tracker/orchestrator"
	"artwork-tracker/scheduler"
	"artwork-tracker/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Run a single scrape pass and exit")
	platform := flag.String("platform", "", "Scrape only this platform once and exit (ebay, artnet, invaluable, liveauctioneers)")
	browser := flag.Bool("browser", false, "Enable the headless-browser scrapers (Invaluable, LiveAuctioneers)")
	serve := flag.Bool("serve", false, "Run continuously with the scheduler, API server and Telegram bot")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *browser {
		cfg.Scraping.IncludeBrowser = true
	}

	scorer := filter.NewScorer(cfg.Scoring.RejectionThreshold, cfg.Scoring.AcceptanceThreshold)
	orch := orchestrator.New(cfg, scorer)
	defer orch.Close()

	switch {
	case *platform != "":
		runPlatform(orch, models.Platform(*platform))
	case *once:
		runOnce(cfg, orch, scorer)
	case *serve:
		runService(cfg, orch, scorer)
	default:
		runOnce(cfg, orch, scorer)
	}
}

// loadConfig loads configuration from file or returns defaults.
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			return config.Default()
		}
		return cfg
	}
	log.Println("Config file not found. Using default configuration.")
	return config.Default()
}

// runPlatform scrapes one platform and prints the scored results.
func runPlatform(orch *orchestrator.Orchestrator, platform models.Platform) {
	results, err := orch.RunScraper(context.Background(), platform)
	if err != nil {
		log.Fatalf("Scrape failed: %v\n", err)
	}
	printResults(results)
}

// runOnce runs one full pass, prints the results, and pushes them to
// whatever sinks are configured.
func runOnce(cfg *config.Config, orch *orchestrator.Orchestrator, scorer *filter.Scorer) {
	results, stats, err := orch.RunAll(context.Background())
	if err != nil {
		log.Fatalf("Scrape pass failed: %v\n", err)
	}

	fmt.Printf("Collected %d listings, %d passed scoring (%s)\n",
		stats.TotalCollected, stats.Passed, stats.Elapsed.Round(time.Second))
	printResults(results)

	database := openDatabase(cfg)
	if database != nil {
		defer database.Close()
		newCount, err := database.SaveBatch(results)
		if err != nil {
			log.Printf("Error: failed to save results: %v\n", err)
		} else {
			fmt.Printf("Saved to database: %d new artwork(s)\n", newCount)
		}
	}

	if notifier := openNotifier(cfg); notifier != nil {
		if err := notifier.NotifyNewFinds(results, scorer.AcceptanceThreshold()); err != nil {
			log.Printf("Warning: failed to send Telegram notification: %v\n", err)
		}
	}

	if writer := openSheetsWriter(cfg); writer != nil {
		if _, err := writer.CreateRunSheet(results); err != nil {
			log.Printf("Warning: failed to export to Google Sheets: %v\n", err)
		}
	}
}

func printResults(results []filter.ScoringResult) {
	if len(results) == 0 {
		fmt.Println("No candidate artworks found.")
		return
	}

	fmt.Println("\nCandidate artworks:")
	fmt.Println("===================")
	for i, r := range results {
		l := r.Listing
		fmt.Printf("\n%d. %s\n", i+1, l.Title)
		fmt.Printf("   Platform: %s\n", l.Platform)
		fmt.Printf("   Confidence: %.1f\n", r.ConfidenceScore)
		if l.Price > 0 {
			fmt.Printf("   Price: %.2f %s\n", l.Price, l.Currency)
		}
		if l.SourceURL != "" {
			fmt.Printf("   Link: %s\n", l.SourceURL)
		}
		if len(r.PositiveSignals) > 0 {
			labels := make([]string, 0, len(r.PositiveSignals))
			for label := range r.PositiveSignals {
				labels = append(labels, label)
			}
			fmt.Printf("   Signals: %s\n", strings.Join(labels, ", "))
		}
	}
}

// runService runs the long-lived mode: periodic passes, the HTTP API,
// and the Telegram command bot when a token is configured.
func runService(cfg *config.Config, orch *orchestrator.Orchestrator, scorer *filter.Scorer) {
	database := openDatabase(cfg)
	if database != nil {
		defer database.Close()
	}

	var bot *tgbotapi.BotAPI
	var notifier *notify.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		var err error
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %v\n", err)
		}
		log.Printf("Authorized on account %s\n", bot.Self.UserName)
		notifier = notify.NewFromBot(bot, cfg.TelegramChatID)
	} else {
		log.Println("Telegram not configured, notifications disabled")
	}

	writer := openSheetsWriter(cfg)

	interval := time.Duration(cfg.Scraping.IntervalMinutes) * time.Minute
	sched := scheduler.New(orch, database, notifier, writer, interval, scorer.AcceptanceThreshold())
	sched.Start()
	defer sched.Stop()

	if bot != nil {
		go runBotCommands(bot, cfg.TelegramChatID, database, sched)
	}

	server := api.New(cfg.API.Addr, orch, database, sched)
	if err := server.Start(); err != nil {
		log.Fatalf("API server failed: %v\n", err)
	}
}

// runBotCommands serves /run, /status and /help for the configured chat.
func runBotCommands(bot *tgbotapi.BotAPI, chatID int64, database *db.DB, sched *scheduler.Scheduler) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1

	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		if update.Message.Chat.ID != chatID {
			log.Printf("Ignoring command from unauthorized chat: %d\n", update.Message.Chat.ID)
			continue
		}

		switch update.Message.Command() {
		case "run":
			go sched.RunOnce(context.Background())
			bot.Send(tgbotapi.NewMessage(chatID, "🔍 Scrape pass started. New finds will be posted here."))
		case "status":
			bot.Send(tgbotapi.NewMessage(chatID, formatStatus(database)))
		case "help", "start":
			helpText := "Commands:\n/run - Start a scrape pass now\n/status - Show the last pass\n/help - Show this help"
			bot.Send(tgbotapi.NewMessage(chatID, helpText))
		default:
			bot.Send(tgbotapi.NewMessage(chatID, "Unknown command. Use /help for available commands."))
		}
	}
}

func formatStatus(database *db.DB) string {
	if database == nil {
		return "No database configured, run history unavailable."
	}

	run, err := database.LastRun()
	if err != nil {
		return fmt.Sprintf("Failed to load run history: %v", err)
	}
	if run == nil {
		return "No scrape passes recorded yet."
	}

	status := fmt.Sprintf("Last pass: %s\nStarted: %s\nCollected: %d\nPassed: %d\nNew: %d",
		run.Status, run.StartedAt.Format("2006-01-02 15:04:05"),
		run.TotalCollected, run.Passed, run.NewArtworks)
	if run.LastError != "" {
		status += "\nError: " + run.LastError
	}
	return status
}

func openDatabase(cfg *config.Config) *db.DB {
	if cfg.DatabaseURL == "" && os.Getenv("DB_HOST") == "" {
		log.Println("No database configured, results will not be persisted")
		return nil
	}
	database, err := db.New()
	if err != nil {
		log.Printf("Warning: Failed to initialize database, continuing without persistence: %v\n", err)
		return nil
	}
	log.Println("Database initialized successfully")
	return database
}

func openNotifier(cfg *config.Config) *notify.Notifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil
	}
	notifier, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("Warning: Failed to initialize Telegram notifier: %v\n", err)
		return nil
	}
	return notifier
}

func openSheetsWriter(cfg *config.Config) *sheets.Writer {
	if cfg.SpreadsheetURL == "" {
		return nil
	}

	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.SpreadsheetURL)
		return nil
	}

	writer, err := sheets.NewWriter(spreadsheetID, os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE"))
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return nil
	}
	log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)
	return writer
}
