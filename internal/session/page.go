package session

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a response held by the session.
type Page struct {
	// URL is the final URL of the response after redirects.
	URL *url.URL

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Header holds all response headers.
	Header http.Header

	// Body is the complete response body.
	Body []byte

	doc *goquery.Document
}

// Document parses the body as HTML. The result is cached.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// BaseURL returns the URL relative references on the page resolve against.
// A <base href> element takes precedence over the page URL.
func (p *Page) BaseURL() *url.URL {
	doc, err := p.Document()
	if err != nil {
		return p.URL
	}
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return p.URL
	}
	base, err := p.URL.Parse(strings.TrimSpace(href))
	if err != nil {
		return p.URL
	}
	return base
}

// Resolve resolves ref against the page's base URL.
func (p *Page) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return p.BaseURL().ResolveReference(u), nil
}

// Links returns the raw href of every <a> and <area> element in document order.
func (p *Page) Links() ([]string, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	links := make([]string, 0)
	doc.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		links = append(links, strings.TrimSpace(s.AttrOr("href", "")))
	})
	return links, nil
}
