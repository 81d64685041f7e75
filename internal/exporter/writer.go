package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/allure"
)

type Writer interface {
	WriteReport(ctx context.Context, tests []allure.Test) error
	WriteAttachments(ctx context.Context, attachments []Attachment) error
}

type WriterOption func(*writer)

// WriteToDir writes result and attachment files into dir.
func WriteToDir(dir string) WriterOption {
	return func(w *writer) {
		w.dir = dir
	}
}

// WriteReportTo mirrors every result document to writers.
func WriteReportTo(writers ...io.Writer) WriterOption {
	return func(w *writer) {
		w.reportWriters = append(w.reportWriters, writers...)
	}
}

func NewWriter(fsys afero.Fs, opts ...WriterOption) Writer {
	w := writer{fs: fsys, reportWriters: []io.Writer{io.Discard}}
	for _, o := range opts {
		o(&w)
	}

	return &w
}

type writer struct {
	fs            afero.Fs
	dir           string
	reportWriters []io.Writer
}

func (o *writer) WriteReport(ctx context.Context, tests []allure.Test) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if o.dir != "" {
		if err := mkdir(o.fs, o.dir); err != nil {
			return err
		}
	}

	for _, tc := range tests {
		if err := o.writeReport(tc); err != nil {
			return fmt.Errorf("writeReport test: %w", err)
		}
	}

	return nil
}

func (o *writer) WriteAttachments(ctx context.Context, attachments []Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if o.dir == "" {
		return nil
	}

	if err := mkdir(o.fs, o.dir); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	for _, attachment := range attachments {
		pth := filepath.Join(o.dir, attachment.Source)
		if err := afero.WriteFile(o.fs, pth, attachment.Body, 0o644); err != nil {
			return fmt.Errorf("afero.WriteFile: %w", err)
		}
	}

	return nil
}

// writeReport encodes tc as <uuid>-result.json, plus every mirror writer.
func (o *writer) writeReport(tc allure.Test) (err error) {
	writers := make([]io.Writer, len(o.reportWriters))
	copy(writers, o.reportWriters)

	if o.dir != "" {
		pth := filepath.Join(o.dir, fmt.Sprintf("%s-result.json", tc.UUID))
		file, openErr := o.fs.OpenFile(pth, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if openErr != nil {
			return fmt.Errorf("fs.OpenFile: %w", openErr)
		}

		defer func() {
			if syncErr := file.Sync(); syncErr != nil && err == nil {
				err = fmt.Errorf("file Sync: %w", syncErr)
			}

			_ = file.Close()
		}()

		writers = append(writers, file)
	}

	if encErr := json.NewEncoder(io.MultiWriter(writers...)).Encode(tc); encErr != nil {
		return fmt.Errorf("json.NewEncoder.Encode: %w", encErr)
	}

	return nil
}
