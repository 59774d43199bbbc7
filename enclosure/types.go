package enclosure

import "io"

// compTol is the computational tolerance shared by the arithmetic.
// Interval inversions within 1e2*compTol are silently reoriented;
// anything wider is an internal error.
const compTol = 1e-15

// Scaling selects how remainder slack is allocated across dependency
// slots during composition.
type Scaling int

const (
	ScaleNone Scaling = iota
	ScalePartial
	ScaleFull
	ScaleAdaptive
)

func (s Scaling) String() string {
	switch s {
	case ScaleNone:
		return "none"
	case ScalePartial:
		return "partial"
	case ScaleFull:
		return "full"
	case ScaleAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Options configures a Model. Pass to New; the zero value is not valid,
// start from DefaultOptions.
type Options struct {
	// Composition behavior
	UseAsymRemainder bool    // Allocate remainder asymmetrically across slots (default: true)
	UseDecoupling    bool    // Decouple under/over remainder handling (default: true; declared surface, not consulted)
	Scaling          Scaling // Slack allocation mode (default: ScaleFull; declared surface, not consulted)
	UseIntersection  bool    // Intersect refined bounds with prior bounds (default: true; declared surface, not consulted)
	UseEnvelopes     bool    // Use exact convex/concave envelopes where known (default: true; declared surface, not consulted)
	UseSlopes        bool    // Track slope enclosures alongside values (default: false; declared surface, not consulted)
	UseShadow        bool    // Track secondary (shadow) decompositions through ReLU/addition (default: false)

	// Envelope root search
	RootMaxIter int     // Max iterations for envelope root searches (default: 100)
	RootTol     float64 // Convergence tolerance for envelope root searches (default: 1e-10)

	// Representation limits
	Subdivisions   int // Cells per variable in the step export (default: 8)
	MaxBreakpoints int // Cap on estimator breakpoints, 0 = uncapped (default: 0)

	// Logging configuration
	LogLevel      string    // Log level: "error", "warn", "info", "debug" (default: "warn")
	LogTimeFormat string    // strftime timestamp format for the default logger (default: RFC3339-like)
	LogOutput     io.Writer // Destination for the default logger (default: stderr)
	Logger        Logger    // Overrides the default logger entirely when set
}

// DefaultOptions returns the default configuration for a model.
func DefaultOptions() Options {
	return Options{
		UseAsymRemainder: true,
		UseDecoupling:    true,
		Scaling:          ScaleFull,
		UseIntersection:  true,
		UseEnvelopes:     true,
		UseSlopes:        false,
		UseShadow:        false,

		RootMaxIter: 100,
		RootTol:     1e-10,

		Subdivisions:   8,
		MaxBreakpoints: 0,

		LogLevel:      "warn",
		LogTimeFormat: "",
		LogOutput:     nil,
		Logger:        nil,
	}
}

func (o Options) validate() error {
	if o.RootMaxIter < 1 {
		return errf(CodeInternal, "RootMaxIter must be positive, got %d", o.RootMaxIter)
	}
	if o.RootTol <= 0 {
		return errf(CodeInternal, "RootTol must be positive, got %g", o.RootTol)
	}
	if o.Subdivisions < 1 {
		return errf(CodeInternal, "Subdivisions must be positive, got %d", o.Subdivisions)
	}
	if o.MaxBreakpoints != 0 && o.MaxBreakpoints < 2 {
		return errf(CodeInternal, "MaxBreakpoints must be 0 or at least 2, got %d", o.MaxBreakpoints)
	}
	if o.Scaling < ScaleNone || o.Scaling > ScaleAdaptive {
		return errf(CodeInternal, "unknown scaling mode %d", int(o.Scaling))
	}
	return nil
}
