package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// chromeBinPaths are the common install locations probed before rod
// falls back to downloading its own Chromium.
var chromeBinPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// findChromeBin returns the first installed Chrome/Chromium binary, or
// empty when none is found.
func findChromeBin() string {
	for _, path := range chromeBinPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// BrowserAvailable reports whether a Chrome/Chromium binary is present,
// so browser-backed scrapers can be skipped up front instead of failing
// mid-run.
func BrowserAvailable() bool {
	if findChromeBin() != "" {
		return true
	}
	// rod can also reuse a previously downloaded Chromium.
	if path, exists := launcher.LookPath(); exists {
		return path != ""
	}
	return false
}

// launchBrowser starts a headless browser and connects to it.
func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")

	if bin := findChromeBin(); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	return browser, nil
}

// browserScraper holds the shared headless-browser state for scrapers
// targeting JavaScript-rendered sites. The browser launches lazily on
// the first fetch so construction stays cheap.
type browserScraper struct {
	browser *rod.Browser
}

// ensureBrowser launches the browser on first use. A launch failure is
// fatal for the scraper: without a browser there is nothing it can do.
func (b *browserScraper) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}
	browser, err := launchBrowser()
	if err != nil {
		return err
	}
	b.browser = browser
	return nil
}

// fetchRendered navigates to the URL and returns the HTML after the
// page settles. rod panics on protocol failures, so everything runs
// behind a recover.
func (b *browserScraper) fetchRendered(ctx context.Context, pageURL string, settle time.Duration) (html string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.ensureBrowser(); err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("browser fetch %s: %v", pageURL, r)
		}
	}()

	page := b.browser.MustPage()
	defer page.Close()

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	page.WaitLoad()

	// Give client-side rendering time to fill the result grid.
	if err := sleepCtx(ctx, settle); err != nil {
		return "", err
	}
	if werr := page.Timeout(10 * time.Second).WaitStable(300 * time.Millisecond); werr != nil {
		log.Printf("Warning: page did not stabilize, using current content: url=%s\n", pageURL)
	}

	return page.HTML()
}

// close shuts the browser down if it was ever launched. Safe to call
// repeatedly.
func (b *browserScraper) close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
