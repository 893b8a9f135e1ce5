package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/episodepdf/internal/types"
)

// Middleware processes an episode and returns the (possibly modified) episode.
// Return nil to drop the episode from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an episode. Return nil to drop it.
	Process(ep *types.Episode) (*types.Episode, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the episode through all middleware in order.
func (p *Pipeline) Process(ep *types.Episode) (*types.Episode, error) {
	current := ep

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:   mw.Name(),
				Episode: current,
				Err:     err,
			}
		}
		if result == nil {
			p.logger.Debug("episode dropped", "stage", mw.Name(), "url", ep.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// Names returns the middleware names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.middlewares))
	for i, mw := range p.middlewares {
		names[i] = mw.Name()
	}
	return names
}
