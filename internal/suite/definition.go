package suite

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownClass  = errors.New("unknown test class")
	ErrUnknownMethod = errors.New("unknown test method")
)

// Definition is the suite file: which classes and methods run, in order.
type Definition struct {
	Name            string     `yaml:"name"`
	Portal          string     `yaml:"portal"`
	ParallelClasses int        `yaml:"parallel_classes"`
	Classes         []ClassRef `yaml:"classes"`
}

type ClassRef struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

func Decode(r io.Reader) (Definition, error) {
	var def Definition

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return Definition{}, fmt.Errorf("yaml.Decode: %w", err)
	}

	return def, nil
}

func Load(fsys afero.Fs, pth string) (Definition, error) {
	file, err := fsys.Open(pth)
	if err != nil {
		return Definition{}, fmt.Errorf("fs.Open: %w", err)
	}
	defer file.Close()

	def, err := Decode(file)
	if err != nil {
		return Definition{}, fmt.Errorf("suite %s: %w", pth, err)
	}

	return def, nil
}

// Plan selects the cases named by def from catalogue. Cases keep catalogue
// order within a class; classes follow def. An empty definition selects the
// whole catalogue.
func Plan(def Definition, catalogue []Case) ([]Case, error) {
	if len(def.Classes) == 0 {
		return slices.Clone(catalogue), nil
	}

	var planned []Case

	for _, ref := range def.Classes {
		var known []Case
		for _, c := range catalogue {
			if c.Class == ref.Name {
				known = append(known, c)
			}
		}

		if len(known) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClass, ref.Name)
		}

		for _, m := range append(slices.Clone(ref.Include), ref.Exclude...) {
			if !slices.ContainsFunc(known, func(c Case) bool { return c.Method == m }) {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, ref.Name, m)
			}
		}

		for _, c := range known {
			if len(ref.Include) > 0 && !slices.Contains(ref.Include, c.Method) {
				continue
			}
			if slices.Contains(ref.Exclude, c.Method) {
				continue
			}
			planned = append(planned, c)
		}
	}

	return planned, nil
}
