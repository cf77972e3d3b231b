package automation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"swiggytracker/fetcher"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// ErrNoActiveSource means there is no browser page on the site whose
// session the order requests could ride on.
var ErrNoActiveSource = errors.New("no open Swiggy page to sync from")

const SiteURL = "https://www.swiggy.com"

type Options struct {
	OrdersAPIURL string
	// ControlURL attaches to an already running Chrome (remote debugging
	// websocket). When empty a browser is launched.
	ControlURL string
	ProfileDir string
	Headless   bool
}

// Session runs order-listing requests from inside a logged-in site page,
// so the browser's own cookies authenticate them.
type Session struct {
	browser   *rod.Browser
	page      *rod.Page
	ordersURL string
	launched  *launcher.Launcher
	cancel    context.CancelFunc
}

// Connect attaches to the browser at opts.ControlURL and picks its first
// page on the site, or launches a browser and opens the site.
func Connect(ctx context.Context, opts Options) (*Session, error) {
	if opts.ControlURL != "" {
		return attach(ctx, opts)
	}
	return launch(ctx, opts)
}

func attach(ctx context.Context, opts Options) (*Session, error) {
	connCtx, cancel := context.WithCancel(ctx)
	browser := rod.New().ControlURL(opts.ControlURL).Context(connCtx)
	if err := browser.Connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: browser not reachable at %s: %v", ErrNoActiveSource, opts.ControlURL, err)
	}

	pages, err := browser.Pages()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: listing browser pages: %v", ErrNoActiveSource, err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if IsSitePage(info.URL) {
			log.Info().Str("url", info.URL).Msg("attached to open Swiggy page")
			return &Session{browser: browser, page: p, ordersURL: opts.OrdersAPIURL, cancel: cancel}, nil
		}
	}
	cancel()
	return nil, ErrNoActiveSource
}

// launch starts Chrome on opts.ProfileDir and opens the site. The session
// is only handed back once the profile is logged in; otherwise the window
// is left open on the site for the user to log in and ErrNoActiveSource
// is returned.
func launch(ctx context.Context, opts Options) (*Session, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Leakless(false)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: browser launch failed: %v", ErrNoActiveSource, err)
	}

	connCtx, cancel := context.WithCancel(ctx)
	browser := rod.New().ControlURL(u).Context(connCtx)
	if err := browser.Connect(); err != nil {
		cancel()
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrNoActiveSource, err)
	}

	log.Info().Str("profile", opts.ProfileDir).Msg("opening Swiggy in launched browser")
	page, err := browser.Page(proto.TargetCreateTarget{URL: SiteURL})
	if err == nil {
		err = page.WaitLoad()
	}
	if err != nil {
		browser.Close()
		cancel()
		l.Kill()
		return nil, fmt.Errorf("%w: opening %s: %v", ErrNoActiveSource, SiteURL, err)
	}

	sess := &Session{browser: browser, page: page, ordersURL: opts.OrdersAPIURL, launched: l, cancel: cancel}
	loginErr := fmt.Errorf("%w: no browser profile configured to keep a login", ErrNoActiveSource)
	if opts.ProfileDir != "" {
		loginErr = checkLogin(sess.FetchPage(ctx, ""))
	}
	if loginErr == nil {
		return sess, nil
	}

	if opts.Headless {
		sess.Close()
	} else {
		// Keep the window for the user to log in; only our connection goes.
		cancel()
		log.Info().Msg("left Swiggy open in the launched browser for login")
	}
	return nil, loginErr
}

// checkLogin takes the result of fetching the newest order page and
// reports ErrNoActiveSource unless it is a valid order page. A profile
// that is not logged in gets a non-zero statusCode or a non-JSON body.
func checkLogin(body []byte, err error) error {
	if err != nil {
		return fmt.Errorf("%w: login check failed: %v", ErrNoActiveSource, err)
	}
	if _, err := fetcher.DecodePage(body); err != nil {
		return fmt.Errorf("%w: not logged in: %v", ErrNoActiveSource, err)
	}
	return nil
}

const fetchJS = `async (url) => {
	const res = await fetch(url, { credentials: 'include' });
	return { ok: res.ok, status: res.status, body: await res.text() };
}`

// FetchPage implements fetcher.PageSource.
func (s *Session) FetchPage(ctx context.Context, cursor string) ([]byte, error) {
	target, err := PageURL(s.ordersURL, cursor)
	if err != nil {
		return nil, &fetcher.TransportError{Err: err}
	}
	res, err := s.page.Context(ctx).Eval(fetchJS, target)
	if err != nil {
		return nil, &fetcher.TransportError{Err: err}
	}
	if !res.Value.Get("ok").Bool() {
		return nil, &fetcher.TransportError{StatusCode: res.Value.Get("status").Int()}
	}
	return []byte(res.Value.Get("body").Str()), nil
}

// Close shuts a launched browser down. An attached browser belongs to
// the user and is left running; only the control connection is dropped.
func (s *Session) Close() error {
	var err error
	if s.launched != nil {
		err = s.browser.Close()
		s.launched.Kill()
	}
	if s.cancel != nil {
		s.cancel()
	}
	return err
}

// PageURL returns the listing URL for cursor. An empty cursor is the most
// recent page; otherwise the last seen order id goes in order_id.
func PageURL(base, cursor string) (string, error) {
	if cursor == "" {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid orders API URL %q: %w", base, err)
	}
	q := u.Query()
	q.Set("order_id", cursor)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// IsSitePage reports whether rawURL is a page on swiggy.com or a subdomain.
func IsSitePage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "swiggy.com" || strings.HasSuffix(host, ".swiggy.com")
}
