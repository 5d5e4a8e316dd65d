package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/searchmcp/config"
	"github.com/ysmood/gson"
)

const (
	probeTimeout = 2 * time.Second
	closeTimeout = 5 * time.Second
)

// rodEngine is an Engine backed by a Chromium process driven through rod.
type rodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig
	filter   *requestFilter
}

// NewRodLauncher returns a LaunchFunc that starts headless Chromium with the
// given configuration.
func NewRodLauncher(cfg config.BrowserConfig) LaunchFunc {
	return func(ctx context.Context) (Engine, error) {
		return launchRod(ctx, cfg)
	}
}

func launchRod(ctx context.Context, cfg config.BrowserConfig) (*rodEngine, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	type launched struct {
		url string
		err error
	}
	done := make(chan launched, 1)
	go func() {
		u, err := l.Launch()
		done <- launched{u, err}
	}()

	timeout := cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var controlURL string
	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("launch browser: %w", res.err)
		}
		controlURL = res.url
	case <-timer.C:
		l.Kill()
		return nil, fmt.Errorf("launch browser: %w", context.DeadlineExceeded)
	case <-ctx.Done():
		l.Kill()
		return nil, fmt.Errorf("launch browser: %w", ctx.Err())
	}
	slog.Debug("browser process started", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return &rodEngine{
		browser:  b,
		launcher: l,
		cfg:      cfg,
		filter:   newRequestFilter(cfg.BlockedResourceTypes, cfg.BlockAds),
	}, nil
}

// Connected probes the browser with Browser.getVersion.
func (e *rodEngine) Connected(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, err := e.browser.Context(probeCtx).Version()
	return err == nil
}

// NewSession creates an incognito browser context and one page inside it.
//
// The returned session keeps context-free references so that Close still
// works after the request context has expired.
func (e *rodEngine) NewSession(ctx context.Context) (Session, error) {
	incognito, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	incognito = incognito.Context(context.Background())

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Timeout(closeTimeout).Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(context.Background())

	s := &rodSession{page: page, incognito: incognito}

	if e.cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	if e.cfg.AcceptLanguage != "" {
		page.EnableDomain(&proto.NetworkEnable{})
		headers := proto.NetworkHeaders{"Accept-Language": gson.New(e.cfg.AcceptLanguage)}
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(page); err != nil {
			slog.Warn("failed to set extra headers", "error", err)
		}
	}

	if e.filter != nil {
		s.router = e.filter.hijack(page)
	}

	return s, nil
}

// Close closes the browser and removes its user-data directory.
func (e *rodEngine) Close() error {
	err := e.browser.Timeout(closeTimeout).Close()
	e.launcher.Kill()
	e.launcher.Cleanup()
	return err
}

// rodSession is a Session backed by an incognito rod browser context.
type rodSession struct {
	page      *rod.Page
	incognito *rod.Browser
	router    *rod.HijackRouter
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)

	// The lifecycle listener MUST be registered before Navigate, otherwise a
	// fast page can fire DOMContentLoaded before we start listening.
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	wait()

	return ctx.Err()
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (s *rodSession) OuterHTML(ctx context.Context, selector string) (string, bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return "", false, err
	}
	if !has {
		return "", false, nil
	}
	html, err := el.HTML()
	if err != nil {
		return "", true, err
	}
	return html, true, nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) BodyText(ctx context.Context) (string, error) {
	has, el, err := s.page.Context(ctx).Has("body")
	if err != nil {
		return "", err
	}
	if !has {
		return "", errors.New("document has no body")
	}
	return el.Text()
}

func (s *rodSession) URL(ctx context.Context) string {
	p := s.page.Context(ctx)
	if res, err := p.Eval(`() => window.location.href`); err == nil {
		if u := res.Value.Str(); u != "" {
			return u
		}
	}
	if info, err := p.Info(); err == nil {
		return info.URL
	}
	return ""
}

// Close stops request filtering, closes the page and disposes its browser
// context. Every step is attempted even if an earlier one fails.
func (s *rodSession) Close() error {
	var routerErr error
	if s.router != nil {
		routerErr = s.router.Stop()
	}
	pageErr := s.page.Timeout(closeTimeout).Close()
	ctxErr := s.incognito.Timeout(closeTimeout).Close()
	return errors.Join(routerErr, pageErr, ctxErr)
}
