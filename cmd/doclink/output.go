package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"doclink/internal/analysis"
	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/pipeline"
	"doclink/internal/storage"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	}
	return infoColor
}

func printReport(w io.Writer, report *pipeline.Report, withInfo bool) {
	res := report.Result
	for _, f := range report.Crawl.Failed {
		fmt.Fprintf(w, "%s %s\n", warningColor.Sprint("skipped"), f.Error())
	}

	for _, st := range res.Stages {
		fmt.Fprintf(w, "  -> %-8s doclets=%d resolved=%d/%d added=%d diagnostics=%d %s\n",
			st.Stage, st.Doclets, st.Stats.Resolved, st.Stats.Attempted, st.Stats.Added,
			st.DiagnosticsAfter-st.DiagnosticsBefore, dimColor.Sprint(st.Duration.Round(time.Microsecond)))
	}

	res.Diagnostics.Sort()
	for _, d := range res.Diagnostics.Items() {
		if d.Severity == diag.SevInfo && !withInfo {
			continue
		}
		severityColor(d.Severity).Fprintln(w, d.String())
	}
	if n := res.Diagnostics.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s %d more diagnostics not kept\n", dimColor.Sprint("..."), n)
	}

	counts := res.Collection.DerivationCounts()
	fmt.Fprintf(w, "✅ %d doclets (%d inherited, %d mixed, %d borrowed) in %v\n",
		res.Collection.Len(), counts[graph.DerivationInherited], counts[graph.DerivationMixed],
		counts[graph.DerivationBorrowed], report.Duration.Round(time.Millisecond))
	if report.DumpPath != "" {
		fmt.Fprintf(w, "💾 Dump: %s\n", report.DumpPath)
	}
	if report.Run.ID != "" {
		fmt.Fprintf(w, "💾 Run: %s\n", report.Run.ID)
	}
}

func printDoclets(w io.Writer, docs []*doclet.Doclet) {
	for _, d := range docs {
		var tag string
		switch graph.DerivationOf(d) {
		case graph.DerivationInherited:
			tag = infoColor.Sprint(" (inherited from " + d.Inherits + ")")
		case graph.DerivationMixed:
			tag = infoColor.Sprint(" (mixed from " + d.MixedFrom + ")")
		case graph.DerivationBorrowed:
			tag = infoColor.Sprint(" (borrowed from " + d.BorrowedFrom + ")")
		}
		fmt.Fprintf(w, "%-10s %s%s\n", dimColor.Sprint(d.Kind), d.Longname, tag)
	}
}

func printImpact(w io.Writer, report *analysis.ImpactReport) {
	fmt.Fprintf(w, "🔍 %s (%d documented symbols)\n", report.Subject, len(report.Sources))
	fmt.Fprintf(w, "  -> %d doclets directly affected\n", len(report.DirectlyAffected))
	for _, d := range report.DirectlyAffected {
		fmt.Fprintf(w, "     %s\n", d.Longname)
	}
	fmt.Fprintf(w, "  -> %d doclets indirectly affected\n", len(report.IndirectlyAffected))
	for _, d := range report.IndirectlyAffected {
		fmt.Fprintf(w, "     %s\n", d.Longname)
	}
	receivers := append([]string(nil), report.Receivers...)
	sort.Strings(receivers)
	for _, r := range receivers {
		fmt.Fprintf(w, "  %s %s\n", warningColor.Sprint("receiver"), r)
	}
}

func printRuns(w io.Writer, runs []storage.Run) {
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  doclets=%d diagnostics=%d  %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Doclets, r.Diagnostics, dimColor.Sprint(r.Root))
	}
}
