package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/robotomize/corpsuite/internal/outcome"
)

// Sink exports a run's records as Allure results in one step.
type Sink struct {
	exporter AllureExporter
	writer   Writer
}

func NewSink(exporter AllureExporter, writer Writer) *Sink {
	return &Sink{exporter: exporter, writer: writer}
}

// Flush writes results and attachments. Unreadable attachments do not stop
// the export; they are returned joined with any write error.
func (s *Sink) Flush(ctx context.Context, records []outcome.Record) error {
	report, err := s.exporter.Export(records)
	if err != nil {
		return fmt.Errorf("exporter Export: %w", err)
	}

	var errs []error
	if report.Err != nil {
		errs = append(errs, report.Err)
	}

	if err := s.writer.WriteReport(ctx, report.Tests); err != nil {
		errs = append(errs, fmt.Errorf("writer WriteReport: %w", err))
	}

	if err := s.writer.WriteAttachments(ctx, report.Attachments); err != nil {
		errs = append(errs, fmt.Errorf("writer WriteAttachments: %w", err))
	}

	return errors.Join(errs...)
}
