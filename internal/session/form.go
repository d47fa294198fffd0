package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTML element name constants for form control detection.
const (
	htmlElementInput    = "input"
	htmlElementSelect   = "select"
	htmlElementTextarea = "textarea"
	htmlElementButton   = "button"
	htmlElementOption   = "option"
)

// enctypeMultipart is the form encoding that requires a multipart body.
const enctypeMultipart = "multipart/form-data"

// Form is an HTML form found on a page.
type Form struct {
	// Name is the form's name attribute.
	Name string

	// Action is the resolved submission URL.
	Action *url.URL

	// Method is GET or POST.
	Method string

	// Enctype is the form encoding, application/x-www-form-urlencoded unless
	// the form asks for multipart/form-data.
	Enctype string

	// Fields holds the values a browser would submit: the form's successful
	// controls plus the first named submit button.
	Fields url.Values
}

// FindForm locates the first form whose name attribute equals name.
func (p *Page) FindForm(name string) (*Form, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}

	sel := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("name", "") == name
	}).First()
	if sel.Length() == 0 {
		return nil, ErrFormNotFound
	}

	// Empty action submits to the page itself.
	action, err := p.Resolve(sel.AttrOr("action", ""))
	if err != nil {
		return nil, err
	}

	form := &Form{
		Name:    name,
		Action:  action,
		Method:  strings.ToUpper(strings.TrimSpace(sel.AttrOr("method", ""))),
		Enctype: strings.ToLower(strings.TrimSpace(sel.AttrOr("enctype", ""))),
		Fields:  make(url.Values),
	}
	if form.Method != http.MethodPost {
		form.Method = http.MethodGet
	}
	if form.Enctype != enctypeMultipart {
		form.Enctype = "application/x-www-form-urlencoded"
	}

	submitted := false
	for _, n := range sel.Nodes {
		collectControls(n, form.Fields, &submitted)
	}
	return form, nil
}

// collectControls walks the form subtree and records successful controls.
// submitted tracks whether a submit button has already been taken.
func collectControls(n *html.Node, fields url.Values, submitted *bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case htmlElementInput:
			collectInput(n, fields, submitted)
		case htmlElementTextarea:
			if name := getAttr(n, "name"); name != "" && !hasAttr(n, "disabled") {
				fields.Add(name, textContent(n))
			}
			return
		case htmlElementSelect:
			collectSelect(n, fields)
			return
		case htmlElementButton:
			buttonType := strings.ToLower(getAttr(n, "type"))
			if buttonType == "" || buttonType == "submit" {
				addSubmitter(n, fields, submitted)
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectControls(c, fields, submitted)
	}
}

// collectInput records an <input> element.
func collectInput(n *html.Node, fields url.Values, submitted *bool) {
	name := getAttr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}

	inputType := strings.ToLower(getAttr(n, "type"))
	switch inputType {
	case "submit", "image":
		addSubmitter(n, fields, submitted)
	case "button", "reset", "file":
		// not submitted as form values
	case "checkbox", "radio":
		if hasAttr(n, "checked") {
			value := getAttr(n, "value")
			if value == "" && !hasAttr(n, "value") {
				value = "on"
			}
			fields.Add(name, value)
		}
	default:
		fields.Add(name, getAttr(n, "value"))
	}
}

// addSubmitter records the first named submit control as the clicked button.
func addSubmitter(n *html.Node, fields url.Values, submitted *bool) {
	if *submitted {
		return
	}
	name := getAttr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}
	*submitted = true
	fields.Add(name, getAttr(n, "value"))
}

// collectSelect records the selected options of a <select> element.
// A single-choice select with nothing selected submits its first option.
func collectSelect(n *html.Node, fields url.Values) {
	name := getAttr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}

	var options []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == htmlElementOption {
			options = append(options, c)
			return
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)

	multiple := hasAttr(n, "multiple")
	selected := false
	for _, opt := range options {
		if hasAttr(opt, "selected") && !hasAttr(opt, "disabled") {
			fields.Add(name, optionValue(opt))
			selected = true
			if !multiple {
				return
			}
		}
	}
	if !selected && !multiple && len(options) > 0 {
		fields.Add(name, optionValue(options[0]))
	}
}

// optionValue returns the option's value attribute or, when absent, its text.
func optionValue(n *html.Node) string {
	if hasAttr(n, "value") {
		return getAttr(n, "value")
	}
	return strings.TrimSpace(textContent(n))
}

// textContent concatenates the text nodes below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr reports whether the node carries the attribute, with or without a value.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
