package platform

import (
	"github.com/aretw0/jot/pkg/core"
)

// New assembles a Service over the notes directory at path.
//
//	svc, err := jot.New("./data/notes", jot.WithIDScheme("uuid"))
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(path, o)
	if err != nil {
		return nil, err
	}

	serviceOpts := []core.ServiceOption{
		core.WithIDGenerator(core.NewIDGenerator(o.idScheme)),
	}
	if o.clock != nil {
		serviceOpts = append(serviceOpts, core.WithClock(o.clock))
	}
	if o.logger != nil {
		serviceOpts = append(serviceOpts, core.WithServiceLogger(o.logger))
	}

	return core.NewService(repo, serviceOpts...), nil
}
