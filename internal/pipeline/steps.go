package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/revigodl/internal/model"
	"github.com/nao1215/revigodl/internal/rscript"
	"github.com/nao1215/revigodl/internal/session"
)

// REVIGO form identifiers.
const (
	// InputFieldName is the form field carrying the GO list.
	InputFieldName = "inputGoList"

	// SubmitFormName is the name of the form that starts the analysis.
	SubmitFormName = "submitToRevigo"
)

// Browser is the session capability set the steps rely on.
// *session.Session implements it.
type Browser interface {
	Open(ctx context.Context, rawURL string, fields url.Values) (*session.Page, error)
	SubmitForm(ctx context.Context, name string, overrides url.Values) (*session.Page, error)
	FollowLink(ctx context.Context, href string) (*session.Page, error)
	Back() error
}

// ArtifactWriter persists a downloaded artifact.
// *artifact.Writer implements it.
type ArtifactWriter interface {
	Write(kind model.ArtifactKind, body []byte) (model.ArtifactResult, error)
}

// SubmitStep posts the GO list to the service root and submits the
// analysis form on the returned page.
type SubmitStep struct {
	browser    Browser
	serviceURL string
	logger     *slog.Logger
}

// NewSubmitStep creates the submission step.
func NewSubmitStep(browser Browser, serviceURL string, logger *slog.Logger) *SubmitStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitStep{browser: browser, serviceURL: serviceURL, logger: logger}
}

// Name returns the step name.
func (s *SubmitStep) Name() string {
	return "submit"
}

// Do executes the submission.
func (s *SubmitStep) Do(ctx context.Context, run *model.Run) error {
	fields := url.Values{InputFieldName: {run.Document.Text()}}
	if _, err := s.browser.Open(ctx, s.serviceURL, fields); err != nil {
		return fmt.Errorf("failed to open %s: %w", s.serviceURL, err)
	}
	page, err := s.browser.SubmitForm(ctx, SubmitFormName, nil)
	if err != nil {
		return fmt.Errorf("failed to submit form: %w", err)
	}
	s.logger.Debug("form submitted", "results", page.URL.String())
	return nil
}

// ArtifactStep downloads one artifact from the results page.
type ArtifactStep struct {
	kind       model.ArtifactKind
	back       bool
	suppressed bool
	browser    Browser
	writer     ArtifactWriter
	runner     rscript.Runner
	logger     *slog.Logger
}

// ArtifactStepOption configures an ArtifactStep.
type ArtifactStepOption func(*ArtifactStep)

// WithBack makes the step return to the previous page before following its link.
func WithBack() ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.back = true
	}
}

// WithSuppressed skips writing (and rendering) the artifact. The link is
// still followed.
func WithSuppressed(suppressed bool) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.suppressed = suppressed
	}
}

// WithRunner sets the R runner used for script artifacts.
func WithRunner(runner rscript.Runner) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.runner = runner
	}
}

// WithStepLogger sets the logger of an artifact step.
func WithStepLogger(logger *slog.Logger) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.logger = logger
	}
}

// NewArtifactStep creates the download step for kind.
func NewArtifactStep(kind model.ArtifactKind, browser Browser, writer ArtifactWriter, opts ...ArtifactStepOption) *ArtifactStep {
	s := &ArtifactStep{
		kind:    kind,
		browser: browser,
		writer:  writer,
		runner:  rscript.NopRunner{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name, which is the artifact's file name.
func (s *ArtifactStep) Name() string {
	return s.kind.FileName()
}

// Do navigates to the artifact and writes it unless suppressed.
func (s *ArtifactStep) Do(ctx context.Context, run *model.Run) error {
	if s.back {
		if err := s.browser.Back(); err != nil {
			return fmt.Errorf("failed to go back: %w", err)
		}
	}

	page, err := s.browser.FollowLink(ctx, s.kind.Link())
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", s.kind.Label(), err)
	}

	if s.suppressed {
		s.logger.Debug("artifact suppressed", "artifact", s.kind.FileName())
		run.AddArtifact(model.ArtifactResult{Kind: s.kind, Suppressed: true})
		return nil
	}

	result, err := s.writer.Write(s.kind, page.Body)
	if err != nil {
		return err
	}
	s.logger.Info("artifact written", "artifact", s.kind.FileName(), "path", result.Path, "bytes", result.Size)

	if s.kind.IsScript() {
		s.runner.Run(ctx, result.Path)
		result.Rendered = true
	}
	run.AddArtifact(result)
	return nil
}

// Settings selects what the default pipeline does.
type Settings struct {
	// ServiceURL is the REVIGO root URL.
	ServiceURL string

	// Suppressed lists artifacts that are downloaded but not written.
	Suppressed map[model.ArtifactKind]bool
}

// Default builds the five-step REVIGO pipeline.
func Default(browser Browser, writer ArtifactWriter, runner rscript.Runner, settings Settings, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddStep(NewSubmitStep(browser, settings.ServiceURL, p.logger))

	for i, kind := range model.AllArtifactKinds() {
		stepOpts := []ArtifactStepOption{
			WithSuppressed(settings.Suppressed[kind]),
			WithRunner(runner),
			WithStepLogger(p.logger),
		}
		// The first artifact link is followed from the results page itself.
		if i > 0 {
			stepOpts = append(stepOpts, WithBack())
		}
		p.AddStep(NewArtifactStep(kind, browser, writer, stepOpts...))
	}
	return p
}
