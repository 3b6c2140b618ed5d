// Package crawler drives a headless Chromium through rod: one browser per scan,
// one incognito page per audited URL, plus link discovery over the rendered DOM.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the browser.
type Options struct {
	Bin       string // Chrome/Chromium binary; looked up when empty
	Headless  bool
	NoSandbox bool
	Width     int
	Height    int
}

var (
	errLaunch   = errors.New("launch browser")
	errNavigate = errors.New("navigate")
)

// Browser wraps a rod browser and the launcher process that owns it.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     Options
}

// NewLauncher returns a LaunchFunc that starts a fresh browser per call.
func NewLauncher(opts Options) LaunchFunc {
	return func(ctx context.Context) (Renderer, error) {
		return Launch(ctx, opts)
	}
}

// Launch starts a headless browser and connects to it.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 800
	}

	l := launcher.New().Context(ctx).Headless(opts.Headless)
	bin := opts.Bin
	if bin == "" {
		if path, ok := launcher.LookPath(); ok {
			bin = path
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	if opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLaunch, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: connect: %w", errLaunch, err)
	}

	return &Browser{browser: browser, launcher: l, opts: opts}, nil
}

// NewPage opens a page in a fresh incognito context with the configured viewport.
func (b *Browser) NewPage(ctx context.Context) (Page, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.opts.Width,
		Height:            b.opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = page.Close()
		_ = incognito.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &rodPage{page: page, incognito: incognito}, nil
}

// Close shuts the browser down and removes its profile directory.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page      *rod.Page
	incognito *rod.Browser
}

func (p *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page := p.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w %s: %w", errNavigate, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w %s: wait load: %w", errNavigate, url, err)
	}

	// Settle client-side rendering without hanging on long-polling connections.
	settle := page.Timeout(5 * time.Second)
	defer settle.CancelTimeout()
	idle := settle.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	idle()

	return nil
}

func (p *rodPage) URL(ctx context.Context) string {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return html, nil
}

func (p *rodPage) InjectScript(ctx context.Context, source string) error {
	if err := p.page.Context(ctx).AddScriptTag("", source); err != nil {
		return fmt.Errorf("inject script: %w", err)
	}
	return nil
}

func (p *rodPage) Eval(ctx context.Context, js string, args ...any) ([]byte, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return []byte(res.Value.JSON("", "")), nil
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

func (p *rodPage) Close() error {
	return errors.Join(p.page.Close(), p.incognito.Close())
}
