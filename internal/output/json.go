// Package output renders the core's findings: a stable JSON schema for
// machine consumers, and a colorized terminal summary for humans.
package output

import (
	"encoding/json"
	"io"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/duriantaco/skylos-go/pkg/types"
)

// JSONReport is the top-level JSON output structure (spec section 6).
// Every array is present even when empty, so downstream tools never have
// to special-case a missing key.
type JSONReport struct {
	UnusedFunctions  []types.Finding       `json:"unused_functions"`
	UnusedMethods    []types.Finding       `json:"unused_methods"`
	UnusedClasses    []types.Finding       `json:"unused_classes"`
	UnusedImports    []types.Finding       `json:"unused_imports"`
	UnusedVariables  []types.Finding       `json:"unused_variables"`
	UnusedParameters []types.Finding       `json:"unused_parameters"`
	UnusedFiles      []types.Finding       `json:"unused_files"`
	Secrets          []types.CollabFinding `json:"secrets"`
	Danger           []types.CollabFinding `json:"danger"`
	Quality          []types.CollabFinding `json:"quality"`
	AnalysisSummary  types.AnalysisSummary `json:"analysis_summary"`
}

// BuildJSONReport buckets findings by kind into the schema's named arrays.
func BuildJSONReport(findings []types.Finding, collab []types.CollabFinding, summary types.AnalysisSummary) *JSONReport {
	report := &JSONReport{
		UnusedFunctions:  []types.Finding{},
		UnusedMethods:    []types.Finding{},
		UnusedClasses:    []types.Finding{},
		UnusedImports:    []types.Finding{},
		UnusedVariables:  []types.Finding{},
		UnusedParameters: []types.Finding{},
		UnusedFiles:      []types.Finding{},
		Secrets:          []types.CollabFinding{},
		Danger:           []types.CollabFinding{},
		Quality:          []types.CollabFinding{},
		AnalysisSummary:  summary,
	}

	for _, f := range findings {
		switch f.Type {
		case string(types.KindFunction):
			report.UnusedFunctions = append(report.UnusedFunctions, f)
		case string(types.KindMethod):
			report.UnusedMethods = append(report.UnusedMethods, f)
		case string(types.KindClass):
			report.UnusedClasses = append(report.UnusedClasses, f)
		case string(types.KindImport):
			report.UnusedImports = append(report.UnusedImports, f)
		case string(types.KindParameter):
			report.UnusedParameters = append(report.UnusedParameters, f)
		case "file":
			report.UnusedFiles = append(report.UnusedFiles, f)
		default:
			report.UnusedVariables = append(report.UnusedVariables, f)
		}
	}

	for _, c := range collab {
		switch c.Source {
		case "secrets":
			report.Secrets = append(report.Secrets, c)
		case "danger":
			report.Danger = append(report.Danger, c)
		case "quality":
			report.Quality = append(report.Quality, c)
		}
	}

	return report
}

// jsonFieldOrder lists the report's keys in schema order, so the
// sjson-assembled document reads the same regardless of Go's struct
// field layout.
var jsonFieldOrder = []struct {
	key   string
	value func(*JSONReport) interface{}
}{
	{"unused_functions", func(r *JSONReport) interface{} { return r.UnusedFunctions }},
	{"unused_methods", func(r *JSONReport) interface{} { return r.UnusedMethods }},
	{"unused_classes", func(r *JSONReport) interface{} { return r.UnusedClasses }},
	{"unused_imports", func(r *JSONReport) interface{} { return r.UnusedImports }},
	{"unused_variables", func(r *JSONReport) interface{} { return r.UnusedVariables }},
	{"unused_parameters", func(r *JSONReport) interface{} { return r.UnusedParameters }},
	{"unused_files", func(r *JSONReport) interface{} { return r.UnusedFiles }},
	{"secrets", func(r *JSONReport) interface{} { return r.Secrets }},
	{"danger", func(r *JSONReport) interface{} { return r.Danger }},
	{"quality", func(r *JSONReport) interface{} { return r.Quality }},
	{"analysis_summary", func(r *JSONReport) interface{} { return r.AnalysisSummary }},
}

// RenderJSON writes the report to w, pretty-printed, and nothing else:
// spec section 6 requires that when --json is requested, no non-JSON
// bytes reach stdout. The document is assembled one key at a time with
// sjson rather than a single json.Marshal of the struct, so the key
// order in the output always matches the schema's documented order
// regardless of how JSONReport's fields get reordered over time; pretty
// then applies the final indentation.
func RenderJSON(w io.Writer, report *JSONReport) error {
	doc := []byte("{}")
	for _, field := range jsonFieldOrder {
		raw, err := json.Marshal(field.value(report))
		if err != nil {
			return err
		}
		doc, err = sjson.SetRawBytes(doc, field.key, raw)
		if err != nil {
			return err
		}
	}
	_, err := w.Write(pretty.Pretty(doc))
	return err
}
