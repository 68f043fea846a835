package diag

import (
	"context"
	"fmt"
	"log/slog"

	"doclink/internal/logfields"
)

// Reporter receives diagnostics from resolution stages.
type Reporter interface {
	Report(d Diagnostic)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans a diagnostic out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

type stageReporter struct {
	stage string
	next  Reporter
}

func (s stageReporter) Report(d Diagnostic) {
	if d.Stage == "" {
		d.Stage = s.stage
	}
	s.next.Report(d)
}

// WithStage stamps every diagnostic passing through with the stage name.
func WithStage(r Reporter, stage string) Reporter {
	if r == nil {
		r = NopReporter{}
	}
	return stageReporter{stage: stage, next: r}
}

// OrNop returns r, or a NopReporter when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return NopReporter{}
	}
	return r
}

// Warn reports a warning about subject.
func Warn(r Reporter, code Code, subject, target, format string, args ...any) {
	OrNop(r).Report(Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Subject:  subject,
		Target:   target,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Info reports an informational diagnostic about subject.
func Info(r Reporter, code Code, subject, target, format string, args ...any) {
	OrNop(r).Report(Diagnostic{
		Severity: SevInfo,
		Code:     code,
		Subject:  subject,
		Target:   target,
		Message:  fmt.Sprintf(format, args...),
	})
}

// LogReporter writes diagnostics to a structured logger.
type LogReporter struct {
	Logger *slog.Logger
}

func (l LogReporter) Report(d Diagnostic) {
	if l.Logger == nil {
		return
	}
	level := slog.LevelDebug
	switch d.Severity {
	case SevWarning:
		level = slog.LevelWarn
	case SevError:
		level = slog.LevelError
	}
	l.Logger.LogAttrs(context.Background(), level, d.Message,
		logfields.Stage(d.Stage),
		logfields.Code(string(d.Code)),
		logfields.Longname(d.Subject),
		logfields.Target(d.Target),
	)
}
