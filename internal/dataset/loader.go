package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Source fetches the raw table behind a dataset identifier.
type Source interface {
	Fetch(ctx context.Context, id string) (*Table, error)
}

type SourceFunc func(ctx context.Context, id string) (*Table, error)

func (f SourceFunc) Fetch(ctx context.Context, id string) (*Table, error) {
	return f(ctx, id)
}

type Loader struct {
	sources map[string]Source
	logger  *logrus.Logger
}

// NewLoader returns a loader that reads local CSV files. Other schemes are
// added with Register.
func NewLoader(logger *logrus.Logger) *Loader {
	l := &Loader{
		sources: make(map[string]Source),
		logger:  logger,
	}
	l.Register("file", FileSource{})
	return l
}

func (l *Loader) Register(scheme string, src Source) {
	l.sources[scheme] = src
}

// Scheme returns the URI scheme of id, "file" for plain paths.
func Scheme(id string) string {
	if i := strings.Index(id, "://"); i > 0 {
		return id[:i]
	}
	return "file"
}

func (l *Loader) Load(ctx context.Context, id string) (*Dataset, error) {
	scheme := Scheme(id)
	src, ok := l.sources[scheme]
	if !ok {
		return nil, fmt.Errorf("no source registered for scheme %q", scheme)
	}

	table, err := src.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", id, err)
	}

	ds, err := Decode(id, table)
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"dataset": id,
		"rows":    ds.Len(),
		"columns": len(ds.Columns()),
	}).Debug("Dataset loaded")

	return ds, nil
}

type FileSource struct{}

func (FileSource) Fetch(_ context.Context, id string) (*Table, error) {
	path := strings.TrimPrefix(id, "file://")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingSource)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadTable(f)
}
