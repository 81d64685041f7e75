package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/outcome"
)

const FileName = "events.jsonl"

// Writer appends lifecycle events as JSON lines.
type Writer struct {
	mu   sync.Mutex
	file afero.File
	enc  *json.Encoder
}

// Create truncates pth and returns a writer appending to it.
func Create(fsys afero.Fs, pth string) (*Writer, error) {
	if err := fsys.MkdirAll(filepath.Dir(pth), os.ModePerm); err != nil {
		return nil, fmt.Errorf("fs.MkdirAll: %w", err)
	}

	file, err := fsys.OpenFile(pth, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fs.OpenFile: %w", err)
	}

	return &Writer{file: file, enc: json.NewEncoder(file)}, nil
}

func (w *Writer) Append(e outcome.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("json.Encoder.Encode: %w", err)
	}

	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("file Sync: %w", err)
	}

	return w.file.Close()
}

// Set is a replayed journal. Err collects lines that could not be decoded;
// they are skipped, the rest of the journal still counts.
type Set struct {
	Err  error
	Book *outcome.Book
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewScanner(r)}
}

type Reader struct {
	r *bufio.Scanner
}

func (r *Reader) ReadAll(ctx context.Context) (Set, error) {
	var errs []error

	book := outcome.NewBook()

	for r.r.Scan() {
		select {
		case <-ctx.Done():
			return Set{}, ctx.Err()
		default:
		}

		line := r.r.Bytes()
		if len(line) == 0 {
			continue
		}

		var e outcome.Event
		if err := json.Unmarshal(line, &e); err != nil {
			errs = append(errs, fmt.Errorf("json.Unmarshal: %w", err))
			continue
		}

		if e.Method == "" {
			continue
		}

		description := ""
		if e.Action == outcome.ActionStart {
			description = e.Output
		}

		book.Open(e.Key(), description).Update(e)
	}

	if err := r.r.Err(); err != nil {
		return Set{}, fmt.Errorf("bufio.Scanner: %w", err)
	}

	return Set{Err: errors.Join(errs...), Book: book}, nil
}

// Load replays the journal stored at pth.
func Load(ctx context.Context, fsys afero.Fs, pth string) (Set, error) {
	file, err := fsys.Open(pth)
	if err != nil {
		return Set{}, fmt.Errorf("fs.Open: %w", err)
	}
	defer file.Close()

	return NewReader(file).ReadAll(ctx)
}
