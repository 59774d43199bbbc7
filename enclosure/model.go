package enclosure

import (
	"github.com/speakeasy-api/superpose"
)

// Model is the environment shared by a family of enclosure variables:
// the variable registry, the configuration, and the logger. A model is
// not safe for concurrent use; compose on one goroutine at a time.
type Model struct {
	nvar    int
	options Options
	logger  Logger

	// domains holds the registered range per variable index; defined
	// marks the indices that have been registered.
	domains []superpose.Interval
	defined []bool
}

// New creates a model for nvar independent variables.
func New(nvar int, opts ...Options) (*Model, error) {
	if nvar < 1 {
		return nil, errf(CodeIndex, "model needs at least one variable, got %d", nvar)
	}
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	logger := opt.Logger
	if logger == nil {
		if opt.LogLevel == "" {
			logger = newNoopLogger()
		} else {
			logger = NewLogger(ParseLogLevel(opt.LogLevel), opt.LogOutput, opt.LogTimeFormat)
		}
	}
	return &Model{
		nvar:    nvar,
		options: opt,
		logger:  logger.With(map[string]any{"nvar": nvar}),
		domains: make([]superpose.Interval, nvar),
		defined: make([]bool, nvar),
	}, nil
}

// NVar returns the number of variables the model was created for.
func (m *Model) NVar() int {
	return m.nvar
}

// Options returns the model configuration.
func (m *Model) Options() Options {
	return m.options
}

// Domain returns the registered range of variable i.
func (m *Model) Domain(i int) (superpose.Interval, error) {
	if i < 0 || i >= m.nvar {
		return superpose.Interval{}, errf(CodeIndex, "variable %d outside model of %d", i, m.nvar)
	}
	if !m.defined[i] {
		return superpose.Interval{}, errf(CodeIndex, "variable %d not registered", i)
	}
	return m.domains[i], nil
}

// register records dom for variable i. Re-registering is allowed only
// with the same range; a changed range would invalidate every var
// already built on the old one.
func (m *Model) register(i int, dom superpose.Interval) error {
	if i < 0 || i >= m.nvar {
		return errf(CodeIndex, "variable %d outside model of %d", i, m.nvar)
	}
	if !dom.IsFinite() {
		return errf(CodeIndex, "variable %d range %v is not finite", i, dom)
	}
	if m.defined[i] {
		if d := m.domains[i]; !d.Encloses(dom, 1e2*compTol) || !dom.Encloses(d, 1e2*compTol) {
			return errf(CodeModelMismatch, "variable %d already registered on %v, got %v", i, d, dom)
		}
		return nil
	}
	m.domains[i] = dom
	m.defined[i] = true
	return nil
}
