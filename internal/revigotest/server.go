package revigotest

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/revigodl/internal/model"
)

// SessionCookie is the cookie the fake service issues on submission.
const SessionCookie = "JSESSIONID"

const sessionValue = "revigotest-session"

// DefaultBodies returns the artifact bodies served when no override is set.
func DefaultBodies() map[model.ArtifactKind]string {
	return map[model.ArtifactKind]string{
		model.TreemapScript: "library(treemap)\ntreemap(revigo.data)\n",
		model.TreemapTable:  "\"term_ID\",\"description\",\"freqInDbPercent\"\n\"GO:0006950\",\"response to stress\",\"4.5\"\n",
		model.ScatterScript: "library(ggplot2)\np1 <- ggplot(data = one.data)\n",
		model.ScatterTable:  "term_ID,description,plot_X,plot_Y\nGO:0006950,response to stress,1.2,-3.4\n",
	}
}

// Server is a fake REVIGO service.
type Server struct {
	*httptest.Server

	bodies      map[model.ArtifactKind]string
	noForm      bool
	missing     map[model.ArtifactKind]bool
	statusCodes map[model.ArtifactKind]int

	mu          sync.Mutex
	submissions []string
	fetched     []model.ArtifactKind
}

// Option configures a Server.
type Option func(*Server)

// WithoutForm makes the landing page omit the submitToRevigo form.
func WithoutForm() Option {
	return func(s *Server) {
		s.noForm = true
	}
}

// WithoutLink removes the results page link of kind.
func WithoutLink(kind model.ArtifactKind) Option {
	return func(s *Server) {
		s.missing[kind] = true
	}
}

// WithBody overrides the body served for kind.
func WithBody(kind model.ArtifactKind, body string) Option {
	return func(s *Server) {
		s.bodies[kind] = body
	}
}

// WithStatus makes the artifact endpoint of kind answer with code.
func WithStatus(kind model.ArtifactKind, code int) Option {
	return func(s *Server) {
		s.statusCodes[kind] = code
	}
}

// NewServer starts a fake service that is closed when the test ends.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	s := &Server{
		bodies:      DefaultBodies(),
		missing:     make(map[model.ArtifactKind]bool),
		statusCodes: make(map[model.ArtifactKind]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/results.jsp", s.handleResults)
	for _, kind := range model.AllArtifactKinds() {
		path, _, _ := strings.Cut(kind.Link(), "?")
		mux.HandleFunc("/"+path, s.handleArtifact(kind))
	}

	s.Server = httptest.NewServer(mux)
	tb.Cleanup(s.Close)
	return s
}

// RootURL returns the service root, the URL revigodl submits to.
func (s *Server) RootURL() string {
	return s.URL + "/"
}

// Body returns the body served for kind.
func (s *Server) Body(kind model.ArtifactKind) string {
	return s.bodies[kind]
}

// Submissions returns the GO lists that reached the results page.
func (s *Server) Submissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submissions...)
}

// Fetched returns the artifacts downloaded so far, in request order.
func (s *Server) Fetched() []model.ArtifactKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ArtifactKind(nil), s.fetched...)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sessionValue, Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprint(w, "<html><head><title>REVIGO</title></head><body>\n")
	if !s.noForm {
		fmt.Fprintf(w, `<form name="submitToRevigo" method="post" action="results.jsp">
<textarea name="goList">%s</textarea>
<select name="cutoff"><option value="0.90">large</option><option value="0.70" selected>small</option></select>
<input type="checkbox" name="isPValue" value="yes" checked>
<input type="submit" name="startRevigo" value="Start Revigo">
</form>
`, html.EscapeString(r.PostForm.Get("inputGoList")))
	}
	fmt.Fprint(w, "</body></html>\n")
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if !hasSession(r) {
		http.Error(w, "session expired", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.submissions = append(s.submissions, r.PostForm.Get("goList"))
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body>\n<h1>Results</h1>\n")
	for _, kind := range model.AllArtifactKinds() {
		if s.missing[kind] {
			continue
		}
		fmt.Fprintf(w, "<a href=\"%s\">%s</a>\n", html.EscapeString(kind.Link()), kind.Label())
	}
	// Near misses that must not satisfy an exact href match.
	fmt.Fprint(w, "<a href=\"toR.jsp?table=2\">BP</a>\n<a href=\"export.jsp\">all</a>\n")
	fmt.Fprint(w, "</body></html>\n")
}

func (s *Server) handleArtifact(kind model.ArtifactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !hasSession(r) {
			http.Error(w, "session expired", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("table") != "1" {
			http.NotFound(w, r)
			return
		}
		s.mu.Lock()
		s.fetched = append(s.fetched, kind)
		s.mu.Unlock()

		if code, ok := s.statusCodes[kind]; ok {
			http.Error(w, http.StatusText(code), code)
			return
		}
		if kind.IsScript() {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		}
		fmt.Fprint(w, s.bodies[kind])
	}
}

func hasSession(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	return err == nil && c.Value == sessionValue
}

// Recorder is an R runner that records the scripts it was asked to run.
type Recorder struct {
	mu      sync.Mutex
	scripts []string
}

// Run records scriptPath.
func (r *Recorder) Run(_ context.Context, scriptPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, scriptPath)
}

// Scripts returns the recorded script paths in call order.
func (r *Recorder) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts...)
}
