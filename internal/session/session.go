package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nao1215/revigodl/internal/log"
)

// DefaultMaxRedirects is the number of redirects followed per request.
const DefaultMaxRedirects = 10

// Session is a cookie-aware HTTP session with a current page and back history.
type Session struct {
	// client performs the requests; it owns the cookie jar.
	client *resty.Client

	logger *slog.Logger

	userAgent    string
	timeout      time.Duration
	maxRedirects int
	httpClient   *http.Client

	// current is the page subsequent operations act on.
	current *Page

	// history holds previously visited pages, most recent last.
	history []*Page
}

// Option configures a Session.
type Option func(*Session)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMaxRedirects sets how many redirects a single request may follow.
func WithMaxRedirects(n int) Option {
	return func(s *Session) {
		s.maxRedirects = n
	}
}

// WithHTTPClient sets the underlying http.Client.
// The session installs its own cookie jar on it.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.httpClient = c
	}
}

// New creates a Session with an empty cookie jar and no current page.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		maxRedirects: DefaultMaxRedirects,
		history:      make([]*Page, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewDiscardLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var client *resty.Client
	if s.httpClient != nil {
		client = resty.NewWithClient(s.httpClient)
	} else {
		client = resty.New()
	}
	client.SetCookieJar(jar)
	client.SetLogger(newRestyLogger(s.logger))
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(s.maxRedirects))
	if s.userAgent != "" {
		client.SetHeader("User-Agent", s.userAgent)
	}
	if s.timeout > 0 {
		client.SetTimeout(s.timeout)
	}
	s.client = client

	return s, nil
}

// Current returns the current page, or nil before the first request.
func (s *Session) Current() *Page {
	return s.current
}

// HistoryLen returns the number of pages Back can return to.
func (s *Session) HistoryLen() int {
	return len(s.history)
}

// Cookies returns the cookies the jar would send to rawURL.
func (s *Session) Cookies(rawURL string) ([]*http.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return s.client.GetClient().Jar.Cookies(u), nil
}

// Open loads rawURL. With a non-empty fields it posts them url-encoded,
// otherwise it performs a GET. A successful Open starts a fresh history.
func (s *Session) Open(ctx context.Context, rawURL string, fields url.Values) (*Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req := s.client.R().SetContext(ctx)
	method := http.MethodGet
	if len(fields) > 0 {
		method = http.MethodPost
		req.SetFormDataFromValues(fields)
	}
	page, err := s.navigate(req, method, target)
	if err != nil {
		return nil, err
	}
	s.history = s.history[:0]
	return page, nil
}

// SubmitForm submits the form named name on the current page.
// Values in overrides replace the form's own values for the same field.
func (s *Session) SubmitForm(ctx context.Context, name string, overrides url.Values) (*Page, error) {
	if s.current == nil {
		return nil, ErrNoPage
	}

	form, err := s.current.FindForm(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q on %s", err, name, s.current.URL)
	}
	for key, values := range overrides {
		form.Fields[key] = values
	}

	s.logger.Debug("submitting form",
		"form", form.Name,
		"method", form.Method,
		"action", form.Action.String(),
		"fields", len(form.Fields),
	)

	req := s.client.R().SetContext(ctx)
	target := *form.Action
	if form.Method == http.MethodGet {
		// GET forms replace the action's query string.
		target.RawQuery = form.Fields.Encode()
		return s.navigate(req, http.MethodGet, &target)
	}

	if form.Enctype == enctypeMultipart {
		body, contentType, err := encodeMultipart(form.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode form %q: %w", name, err)
		}
		req.SetHeader("Content-Type", contentType).SetBody(body)
	} else {
		req.SetFormDataFromValues(form.Fields)
	}
	return s.navigate(req, http.MethodPost, &target)
}

// FollowLink follows the first link on the current page whose href
// attribute equals href exactly.
func (s *Session) FollowLink(ctx context.Context, href string) (*Page, error) {
	if s.current == nil {
		return nil, ErrNoPage
	}

	links, err := s.current.Links()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.current.URL, err)
	}

	found := false
	for _, link := range links {
		if link == href {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q on %s", ErrLinkNotFound, href, s.current.URL)
	}

	target, err := s.current.Resolve(href)
	if err != nil {
		return nil, fmt.Errorf("invalid link %q: %w", href, err)
	}
	return s.navigate(s.client.R().SetContext(ctx), http.MethodGet, target)
}

// Back makes the previous page current again. No request is sent.
func (s *Session) Back() error {
	if len(s.history) == 0 {
		return ErrNoHistory
	}
	last := len(s.history) - 1
	s.current = s.history[last]
	s.history = s.history[:last]
	s.logger.Debug("navigated back", "url", s.current.URL.String())
	return nil
}

// navigate executes req and, on success, pushes the current page to the
// history and makes the response current.
func (s *Session) navigate(req *resty.Request, method string, target *url.URL) (*Page, error) {
	s.logger.Debug("request", "method", method, "url", target.String())

	resp, err := req.Execute(method, target.String())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	s.logger.Debug("response",
		"url", target.String(),
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"set-cookie", strings.Join(resp.Header().Values("Set-Cookie"), "; "),
	)

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &StatusError{
			Method:     method,
			URL:        target.String(),
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}

	finalURL := target
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL
	}

	page := &Page{
		URL:         finalURL,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Header:      resp.Header(),
		Body:        resp.Body(),
	}

	if s.current != nil {
		s.history = append(s.history, s.current)
	}
	s.current = page
	return page, nil
}

// encodeMultipart encodes fields as a multipart/form-data body.
func encodeMultipart(fields url.Values) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, values := range fields {
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
