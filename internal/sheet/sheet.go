package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoHeader      = errors.New("header row not found")
)

// Row maps header names to cell values.
type Row map[string]string

// ReadSheet reads the named sheet of the workbook at pth. The first row is
// the header; rows without any value are dropped and integral numbers lose
// their ".0" suffix.
func ReadSheet(fsys afero.Fs, pth, name string) ([]Row, error) {
	f, err := open(fsys, pth)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return read(f, name)
}

// ReadFirstSheet reads the first sheet of the workbook at pth.
func ReadFirstSheet(fsys afero.Fs, pth string) ([]Row, error) {
	f, err := open(fsys, pth)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: workbook %s is empty", ErrSheetNotFound, pth)
	}

	return read(f, names[0])
}

func SheetNames(fsys afero.Fs, pth string) ([]string, error) {
	f, err := open(fsys, pth)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Find returns the first row whose column equals value.
func Find(rows []Row, column, value string) (Row, bool) {
	for _, r := range rows {
		if r[column] == value {
			return r, true
		}
	}

	return nil, false
}

func open(fsys afero.Fs, pth string) (*excelize.File, error) {
	file, err := fsys.Open(pth)
	if err != nil {
		return nil, fmt.Errorf("fs.Open: %w", err)
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenReader: %w", err)
	}

	return f, nil
}

func read(f *excelize.File, name string) ([]Row, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("excelize.GetRows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in sheet %q", ErrNoHeader, name)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(Row, len(headers))
		hasData := false

		for i, h := range headers {
			value := ""
			if i < len(cells) {
				value = normalize(cells[i])
			}

			if value != "" {
				hasData = true
			}

			row[h] = value
		}

		if hasData {
			out = append(out, row)
		}
	}

	return out, nil
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, ".0") && strings.Trim(strings.TrimSuffix(v, ".0"), "-0123456789") == "" {
		return strings.TrimSuffix(v, ".0")
	}

	return v
}
