// Package session provides a small stateful HTTP session that behaves like
// a scripted browser: it keeps cookies, a current page and a back history,
// and can submit forms and follow links found on the current page.
//
// # Capabilities
//
//   - Open: load a URL, optionally posting form fields
//   - SubmitForm: submit a named form on the current page
//   - FollowLink: follow the link whose href matches exactly
//   - Back: return to the previous page without a network request
//
// Link lookup compares the raw href attribute with the requested value.
// No normalisation or partial matching is attempted, so a change in the
// remote markup surfaces as ErrLinkNotFound.
//
// # Usage
//
//	s, err := session.New(session.WithUserAgent("revigodl/1.0"))
//	page, err := s.Open(ctx, "http://revigo.irb.hr/", url.Values{"inputGoList": {text}})
//	page, err = s.SubmitForm(ctx, "submitToRevigo", nil)
//	page, err = s.FollowLink(ctx, "toR_treemap.jsp?table=1")
//	err = s.Back()
//
// A Session is not safe for concurrent use.
package session
