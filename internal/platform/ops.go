package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/jot/pkg/adapters/fs"
	"github.com/aretw0/jot/pkg/core"
)

// Init prepares the notes directory at path and returns the repository
// backing it. An injected repository is initialized instead.
func Init(path string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(path, o)
}

func initRepository(path string, o *options) (core.Repository, error) {
	repo := o.repository
	if repo == nil {
		fsRepo, err := fs.NewRepository(fs.Config{
			Path:         path,
			Format:       o.format,
			AutoInit:     o.autoInit,
			MustExist:    o.mustExist,
			Versioning:   o.versioning,
			Workers:      o.workers,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
		if err != nil {
			return nil, err
		}
		repo = fsRepo
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize notes directory: %w", err)
	}
	if o.logger != nil {
		o.logger.Debug("notes directory ready", "path", path, "versioning", o.versioning)
	}
	return repo, nil
}
