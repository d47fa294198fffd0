package model

// ArtifactKind identifies one of the files REVIGO generates for a submission.
type ArtifactKind string

const (
	// TreemapScript is the R script drawing the treemap.
	TreemapScript ArtifactKind = "treemap.R"

	// TreemapTable is the CSV export behind the treemap.
	TreemapTable ArtifactKind = "treemap.csv"

	// ScatterScript is the R script drawing the scatterplot.
	ScatterScript ArtifactKind = "scatter.R"

	// ScatterTable is the CSV export behind the scatterplot.
	ScatterTable ArtifactKind = "scatter.csv"
)

// ScatterPDFSaveLine is appended to the downloaded scatterplot script.
// REVIGO's scatter script draws the plot but never saves it.
const ScatterPDFSaveLine = `ggsave("revigo_scatter.pdf")` + "\n"

// AllArtifactKinds returns the artifact kinds in download order.
// The order matches the links followed on the REVIGO results page.
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{TreemapScript, TreemapTable, ScatterScript, ScatterTable}
}

// FileName returns the base file name of the artifact without prefix.
func (k ArtifactKind) FileName() string {
	return string(k)
}

// Link returns the exact href of the results page link serving this artifact.
func (k ArtifactKind) Link() string {
	switch k {
	case TreemapScript:
		return "toR_treemap.jsp?table=1"
	case TreemapTable:
		return "export_treemap.jsp?table=1"
	case ScatterScript:
		return "toR.jsp?table=1"
	case ScatterTable:
		return "export.jsp?table=1"
	default:
		return ""
	}
}

// IsScript reports whether the artifact is an R script that gets rendered.
func (k ArtifactKind) IsScript() bool {
	return k == TreemapScript || k == ScatterScript
}

// Trailer returns the bytes written after the downloaded body.
func (k ArtifactKind) Trailer() []byte {
	if k == ScatterScript {
		return []byte(ScatterPDFSaveLine)
	}
	return nil
}

// Label returns a human readable name such as "treemap script".
func (k ArtifactKind) Label() string {
	switch k {
	case TreemapScript:
		return "treemap script"
	case TreemapTable:
		return "treemap table"
	case ScatterScript:
		return "scatter script"
	case ScatterTable:
		return "scatter table"
	default:
		return string(k)
	}
}

// IsValid reports whether k is one of the known artifact kinds.
func (k ArtifactKind) IsValid() bool {
	return k.Link() != ""
}
