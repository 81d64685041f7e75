package exporter

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// mkdir creates pth on fsys unless it already exists.
func mkdir(fsys afero.Fs, pth string) error {
	ok, err := afero.DirExists(fsys, pth)
	if err != nil {
		return fmt.Errorf("afero.DirExists: %w", err)
	}

	if ok {
		return nil
	}

	if err := fsys.MkdirAll(pth, os.ModePerm); err != nil {
		return fmt.Errorf("fs.MkdirAll: %w", err)
	}

	return nil
}
