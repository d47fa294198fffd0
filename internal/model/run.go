package model

import "time"

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	// RunStatusCompleted means all five workflow steps finished.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed means a step returned an error. Artifacts written
	// before the failing step are left on disk.
	RunStatusFailed RunStatus = "failed"
)

// ArtifactResult records what happened to one artifact during a run.
type ArtifactResult struct {
	// Kind is the artifact kind.
	Kind ArtifactKind `json:"kind"`

	// Path is the file the artifact was written to. Empty when suppressed.
	Path string `json:"path,omitempty"`

	// Size is the number of bytes written, trailer included.
	Size int64 `json:"size"`

	// MIMEType is the detected content type of the written file.
	MIMEType string `json:"mime_type,omitempty"`

	// Suppressed is true when the user disabled this artifact.
	Suppressed bool `json:"suppressed"`

	// Rendered is true when the R interpreter was invoked on the script.
	// It says nothing about whether R succeeded.
	Rendered bool `json:"rendered"`
}

// Run is the outcome of a single revigodl invocation.
type Run struct {
	// Document is the submitted GO list.
	Document *Document `json:"document"`

	// ServiceURL is the REVIGO endpoint the document was submitted to.
	ServiceURL string `json:"service_url"`

	// Prefix is the output prefix after normalization (trailing "_" included).
	Prefix string `json:"prefix"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, successfully or not.
	FinishedAt time.Time `json:"finished_at"`

	// Status is the terminal state.
	Status RunStatus `json:"status"`

	// Error is the failure message for failed runs.
	Error string `json:"error,omitempty"`

	// Artifacts holds one entry per artifact step that was reached, in order.
	Artifacts []ArtifactResult `json:"artifacts"`
}

// NewRun creates a run for the given document.
func NewRun(doc *Document, serviceURL, prefix string) *Run {
	return &Run{
		Document:   doc,
		ServiceURL: serviceURL,
		Prefix:     prefix,
		StartedAt:  time.Now(),
		Artifacts:  make([]ArtifactResult, 0, len(AllArtifactKinds())),
	}
}

// AddArtifact appends an artifact result.
func (r *Run) AddArtifact(result ArtifactResult) {
	r.Artifacts = append(r.Artifacts, result)
}

// Finish sets the terminal state from err.
func (r *Run) Finish(err error) {
	r.FinishedAt = time.Now()
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Written returns the artifacts that were written to disk.
func (r *Run) Written() []ArtifactResult {
	written := make([]ArtifactResult, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		if !a.Suppressed {
			written = append(written, a)
		}
	}
	return written
}
