package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"artwork-tracker/filter"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer exports scored discoveries to Google Sheets.
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a Google Sheets writer. Service-account credentials
// come from the given file path, or from the GOOGLE_SHEETS_CREDENTIALS
// environment variable when the path is empty.
func NewWriter(spreadsheetID string, credentialsPath string) (*Writer, error) {
	ctx := context.Background()

	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file, got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// resultRow flattens one scored listing into a sheet row.
func resultRow(result filter.ScoringResult) []interface{} {
	l := result.Listing
	return []interface{}{
		l.Title,
		string(l.Platform),
		result.ConfidenceScore,
		l.Price,
		l.Currency,
		l.SourceURL,
		formatSignals(result.PositiveSignals),
		l.Location,
		l.SellerName,
	}
}

var sheetHeader = []interface{}{
	"Title", "Platform", "Confidence", "Price", "Currency", "Link", "Signals", "Location", "Seller",
}

// formatSignals renders a signal map as "label (+1.5), ..." sorted by
// weight descending so the strongest evidence reads first.
func formatSignals(signals map[string]float64) string {
	if len(signals) == 0 {
		return ""
	}

	labels := make([]string, 0, len(signals))
	for label := range signals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if signals[labels[i]] != signals[labels[j]] {
			return signals[labels[i]] > signals[labels[j]]
		}
		return labels[i] < labels[j]
	})

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s (%+.1f)", label, signals[label]))
	}
	return strings.Join(parts, ", ")
}

// WriteResults replaces the first sheet's contents with the given
// results.
func (w *Writer) WriteResults(results []filter.ScoringResult) error {
	if len(results) == 0 {
		log.Println("No results to write")
		return nil
	}

	values := [][]interface{}{sheetHeader}
	for _, result := range results {
		values = append(values, resultRow(result))
	}

	range_ := "Sheet1!A1"
	clearReq := &sheets.ClearValuesRequest{}
	if _, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, range_, clearReq).Do(); err != nil {
		log.Printf("Warning: Failed to clear existing data: %v\n", err)
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	log.Printf("Successfully wrote %d results to Google Sheets\n", len(results))
	return nil
}

// CreateRunSheet creates a fresh sheet for one scrape pass, inserted at
// the front of the spreadsheet, and fills it with the pass's results.
// Returns the sheet name actually used.
func (w *Writer) CreateRunSheet(results []filter.ScoringResult) (string, error) {
	sheetName := sanitizeSheetName(fmt.Sprintf("Run_%s", time.Now().Format("20060102_150405")))

	addSheetRequest := &sheets.AddSheetRequest{
		Properties: &sheets.SheetProperties{
			Title: sheetName,
			Index: 0,
		},
	}
	batchReq := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{AddSheet: addSheetRequest}},
	}
	if _, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchReq).Do(); err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}

	values := [][]interface{}{sheetHeader}
	for _, result := range results {
		values = append(values, resultRow(result))
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, sheetName+"!A1", valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return sheetName, fmt.Errorf("failed to write to sheet %q: %w", sheetName, err)
	}

	log.Printf("Successfully wrote %d results to new sheet %q\n", len(results), sheetName)
	return sheetName, nil
}

var spreadsheetIDRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// ExtractSpreadsheetID pulls the spreadsheet ID out of a full Google
// Sheets URL. Returns empty when the URL doesn't look like one.
func ExtractSpreadsheetID(url string) string {
	if m := spreadsheetIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

var invalidSheetNameChars = regexp.MustCompile(`[\[\]*?/\\:]`)

// sanitizeSheetName strips characters Google Sheets forbids in sheet
// names and caps the length at 100.
func sanitizeSheetName(name string) string {
	name = invalidSheetNameChars.ReplaceAllString(name, "_")
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
