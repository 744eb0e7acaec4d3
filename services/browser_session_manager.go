package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/playwright-community/playwright-go"
)

var ErrBrowserNotStarted = errors.New("browser is not started")

// SessionProvider hands out isolated pages, one per application attempt.
type SessionProvider interface {
	EnsureStarted(ctx context.Context) error
	OpenSession(ctx context.Context) (Page, error)
	CloseSession(page Page) error
	Shutdown() error
}

// BrowserOptions controls how the shared browser is launched.
type BrowserOptions struct {
	Headless  bool
	UserAgent string
	// CDPURL attaches to an already running Chrome instead of launching one.
	CDPURL string
}

var defaultLaunchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// SessionManager owns the one browser process shared by a batch.
type SessionManager struct {
	mu      sync.Mutex
	opts    BrowserOptions
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewSessionManager(opts BrowserOptions) *SessionManager {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &SessionManager{opts: opts}
}

// EnsureStarted launches the browser unless it is already running.
// Launch errors are returned as is; there is no retry.
func (m *SessionManager) EnsureStarted(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil && m.browser.IsConnected() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return fmt.Errorf("failed to start playwright: %w", err)
		}
		m.pw = pw
	}

	var (
		browser playwright.Browser
		err     error
	)
	if m.opts.CDPURL != "" {
		log.Printf("Connecting to existing Chrome at %s", m.opts.CDPURL)
		browser, err = m.pw.Chromium.ConnectOverCDP(m.opts.CDPURL)
	} else {
		browser, err = m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(m.opts.Headless),
			Args:     defaultLaunchArgs,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.browser = browser
	log.Printf("Browser started (headless=%t)", m.opts.Headless)
	return nil
}

// OpenSession returns a new page in its own browser context.
func (m *SessionManager) OpenSession(ctx context.Context) (Page, error) {
	if err := m.EnsureStarted(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	browser := m.browser
	m.mu.Unlock()
	if browser == nil {
		return nil, ErrBrowserNotStarted
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(m.opts.UserAgent),
		Locale:    playwright.String("en-US"),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create browser page: %w", err)
	}

	if err := page.AddInitScript(playwright.Script{
		Content: playwright.String(`Object.defineProperty(navigator, 'webdriver', { get: () => false });`),
	}); err != nil {
		log.Printf("Failed to install init script: %v", err)
	}

	return newPlaywrightPage(bctx, page), nil
}

// CloseSession releases the page and its context.
func (m *SessionManager) CloseSession(page Page) error {
	if page == nil {
		return nil
	}
	return page.Close()
}

// Shutdown closes the browser and the playwright driver. Safe to call twice.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		m.browser = nil
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.pw = nil
	}
	return errors.Join(errs...)
}
