package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nao1215/revigodl/internal/artifact"
	"github.com/nao1215/revigodl/internal/log"
	"github.com/nao1215/revigodl/internal/model"
	"github.com/nao1215/revigodl/internal/revigotest"
	"github.com/nao1215/revigodl/internal/session"
)

const testGoList = "GO:0006950\t1e-5\nGO:0008150\t0.01\n"

type runFixture struct {
	server   *revigotest.Server
	recorder *revigotest.Recorder
	dir      string
	run      *model.Run
}

// runDefault executes the default pipeline against a fake service.
func runDefault(t *testing.T, prefix string, suppressed map[model.ArtifactKind]bool, opts ...revigotest.Option) (*runFixture, error) {
	t.Helper()

	f := &runFixture{
		server:   revigotest.NewServer(t, opts...),
		recorder: &revigotest.Recorder{},
		dir:      t.TempDir(),
	}
	return f, f.execute(t, prefix, suppressed)
}

func (f *runFixture) execute(t *testing.T, prefix string, suppressed map[model.ArtifactKind]bool) error {
	t.Helper()

	browser, err := session.New(session.WithLogger(log.NewDiscardLogger()))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	f.run = model.NewRun(model.NewDocument("go.txt", []byte(testGoList)), f.server.RootURL(), prefix)
	p := Default(browser, artifact.NewWriter(f.dir, prefix), f.recorder,
		Settings{ServiceURL: f.server.RootURL(), Suppressed: suppressed},
		WithLogger(log.NewDiscardLogger()),
	)
	return p.Execute(context.Background(), f.run)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// TestDefault tests the shape of the default pipeline.
func TestDefault(t *testing.T) {
	t.Parallel()

	p := Default(nil, nil, nil, Settings{})
	want := []string{"submit", "treemap.R", "treemap.csv", "scatter.R", "scatter.csv"}
	if diff := cmp.Diff(want, p.StepNames()); diff != "" {
		t.Errorf("step names mismatch (-want +got):\n%s", diff)
	}
}

// TestDefaultPipeline_AllArtifacts tests a full run without suppression.
func TestDefaultPipeline_AllArtifacts(t *testing.T) {
	t.Parallel()

	f, err := runDefault(t, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"scatter.R", "scatter.csv", "treemap.R", "treemap.csv"}
	if diff := cmp.Diff(want, listFiles(t, f.dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	for _, kind := range []model.ArtifactKind{model.TreemapScript, model.TreemapTable, model.ScatterTable} {
		if got := readFile(t, filepath.Join(f.dir, kind.FileName())); got != f.server.Body(kind) {
			t.Errorf("%s: got %q, want served body %q", kind, got, f.server.Body(kind))
		}
	}
	scatter := readFile(t, filepath.Join(f.dir, "scatter.R"))
	if want := f.server.Body(model.ScatterScript) + model.ScatterPDFSaveLine; scatter != want {
		t.Errorf("scatter.R: got %q, want %q", scatter, want)
	}

	if diff := cmp.Diff([]string{testGoList}, f.server.Submissions()); diff != "" {
		t.Errorf("submitted GO list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.AllArtifactKinds(), f.server.Fetched()); diff != "" {
		t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
	}

	wantScripts := []string{filepath.Join(f.dir, "treemap.R"), filepath.Join(f.dir, "scatter.R")}
	if diff := cmp.Diff(wantScripts, f.recorder.Scripts(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("rendered scripts mismatch (-want +got):\n%s", diff)
	}

	if len(f.run.Artifacts) != 4 {
		t.Fatalf("expected 4 artifact results, got %d", len(f.run.Artifacts))
	}
	for _, a := range f.run.Artifacts {
		if a.Suppressed {
			t.Errorf("%s: unexpected suppression", a.Kind)
		}
		if a.Rendered != a.Kind.IsScript() {
			t.Errorf("%s: rendered = %v", a.Kind, a.Rendered)
		}
	}
}

// TestDefaultPipeline_SuppressionCombinations tests every combination of
// the four suppression flags.
func TestDefaultPipeline_SuppressionCombinations(t *testing.T) {
	t.Parallel()

	kinds := model.AllArtifactKinds()
	for mask := 0; mask < 1<<len(kinds); mask++ {
		suppressed := make(map[model.ArtifactKind]bool)
		for i, kind := range kinds {
			if mask&(1<<i) != 0 {
				suppressed[kind] = true
			}
		}

		t.Run(fmt.Sprintf("mask=%04b", mask), func(t *testing.T) {
			t.Parallel()

			f, err := runDefault(t, "", suppressed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantFiles := make([]string, 0, len(kinds))
			wantScripts := make([]string, 0, 2)
			for _, kind := range kinds {
				if suppressed[kind] {
					continue
				}
				wantFiles = append(wantFiles, kind.FileName())
				if kind.IsScript() {
					wantScripts = append(wantScripts, filepath.Join(f.dir, kind.FileName()))
				}
			}
			sort.Strings(wantFiles)

			if diff := cmp.Diff(wantFiles, listFiles(t, f.dir)); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantScripts, f.recorder.Scripts(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("rendered scripts mismatch (-want +got):\n%s", diff)
			}
			// Navigation does not depend on suppression.
			if diff := cmp.Diff(kinds, f.server.Fetched()); diff != "" {
				t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDefaultPipeline_Prefix tests prefixed output names.
func TestDefaultPipeline_Prefix(t *testing.T) {
	t.Parallel()

	f, err := runDefault(t, "run1_", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"run1_scatter.R", "run1_scatter.csv", "run1_treemap.R", "run1_treemap.csv"}
	if diff := cmp.Diff(want, listFiles(t, f.dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	wantScripts := []string{filepath.Join(f.dir, "run1_treemap.R"), filepath.Join(f.dir, "run1_scatter.R")}
	if diff := cmp.Diff(wantScripts, f.recorder.Scripts(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("rendered scripts mismatch (-want +got):\n%s", diff)
	}
}

// TestDefaultPipeline_Failures tests that failures stop the run.
func TestDefaultPipeline_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing form writes nothing", func(t *testing.T) {
		t.Parallel()

		f, err := runDefault(t, "", nil, revigotest.WithoutForm())
		if !errors.Is(err, session.ErrFormNotFound) {
			t.Fatalf("expected ErrFormNotFound, got %v", err)
		}
		if files := listFiles(t, f.dir); len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
		if len(f.recorder.Scripts()) != 0 {
			t.Error("expected R not to run")
		}
	})

	t.Run("suppressed artifact with missing link still fails", func(t *testing.T) {
		t.Parallel()

		f, err := runDefault(t, "",
			map[model.ArtifactKind]bool{model.TreemapScript: true},
			revigotest.WithoutLink(model.TreemapScript),
		)
		if !errors.Is(err, session.ErrLinkNotFound) {
			t.Fatalf("expected ErrLinkNotFound, got %v", err)
		}
		if files := listFiles(t, f.dir); len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
	})

	t.Run("earlier files stay on disk", func(t *testing.T) {
		t.Parallel()

		f, err := runDefault(t, "", nil, revigotest.WithoutLink(model.ScatterScript))
		if !errors.Is(err, session.ErrLinkNotFound) {
			t.Fatalf("expected ErrLinkNotFound, got %v", err)
		}
		want := []string{"treemap.R", "treemap.csv"}
		if diff := cmp.Diff(want, listFiles(t, f.dir)); diff != "" {
			t.Errorf("files mismatch (-want +got):\n%s", diff)
		}
		if len(f.run.Artifacts) != 2 {
			t.Errorf("expected 2 artifact results, got %d", len(f.run.Artifacts))
		}
	})

	t.Run("http error status", func(t *testing.T) {
		t.Parallel()

		f, err := runDefault(t, "", nil, revigotest.WithStatus(model.TreemapTable, http.StatusInternalServerError))
		var statusErr *session.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", statusErr.StatusCode)
		}
		if diff := cmp.Diff([]string{"treemap.R"}, listFiles(t, f.dir)); diff != "" {
			t.Errorf("files mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unwritable output directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		server := revigotest.NewServer(t)
		browser, err := session.New()
		if err != nil {
			t.Fatal(err)
		}
		run := model.NewRun(model.NewDocument("go.txt", []byte(testGoList)), server.RootURL(), "")
		p := Default(browser, artifact.NewWriter(filepath.Join(blocker, "out"), ""), &revigotest.Recorder{},
			Settings{ServiceURL: server.RootURL()}, WithLogger(log.NewDiscardLogger()))
		if err := p.Execute(context.Background(), run); err == nil {
			t.Error("expected write error")
		}
	})
}

// TestDefaultPipeline_Rerun tests that a second run overwrites the first.
func TestDefaultPipeline_Rerun(t *testing.T) {
	t.Parallel()

	f, err := runDefault(t, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(f.dir, "treemap.csv")
	if err := os.WriteFile(path, []byte("stale content that is longer than the served table body ...........................................\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := f.execute(t, "", nil); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := readFile(t, path); got != f.server.Body(model.TreemapTable) {
		t.Errorf("expected file to be overwritten, got %q", got)
	}
}

// TestArtifactStep tests a single artifact step in isolation.
func TestArtifactStep(t *testing.T) {
	t.Parallel()

	t.Run("back failure is reported", func(t *testing.T) {
		t.Parallel()

		browser, err := session.New()
		if err != nil {
			t.Fatal(err)
		}
		step := NewArtifactStep(model.TreemapTable, browser, artifact.NewWriter(t.TempDir(), ""), WithBack())
		if err := step.Do(context.Background(), newTestRun()); !errors.Is(err, session.ErrNoHistory) {
			t.Errorf("expected ErrNoHistory, got %v", err)
		}
	})

	t.Run("follow without page fails", func(t *testing.T) {
		t.Parallel()

		browser, err := session.New()
		if err != nil {
			t.Fatal(err)
		}
		step := NewArtifactStep(model.TreemapScript, browser, artifact.NewWriter(t.TempDir(), ""))
		if step.Name() != "treemap.R" {
			t.Errorf("unexpected name %q", step.Name())
		}
		if err := step.Do(context.Background(), newTestRun()); !errors.Is(err, session.ErrNoPage) {
			t.Errorf("expected ErrNoPage, got %v", err)
		}
	})
}
