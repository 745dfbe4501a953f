package tensor

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config bundles the external collaborators threaded through every
// tensor: the symmetry group, the numeric backend, the fermionic
// statistics of the generators, and the default element type. The
// engine never owns these; it only consults them.
type Config struct {
	Sym     Symmetry
	Backend Backend

	// Fermionic flags the generators whose charges carry fermionic
	// parity. nil means a purely bosonic model; then swap gates are
	// no-ops. Length must equal Sym.NSym() when set.
	Fermionic []bool

	// DType is the element type of tensors created under this config.
	DType DataType

	// Logger receives diagnosable events such as the charge selection
	// rule silently producing a zero scalar. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// NewConfig builds a config with Float64 elements and a no-op logger.
func NewConfig(sym Symmetry, backend Backend) *Config {
	return &Config{
		Sym:     sym,
		Backend: backend,
		DType:   Float64,
		Logger:  zerolog.Nop(),
	}
}

func (c *Config) validate() error {
	if c.Sym == nil || c.Backend == nil {
		return errors.Wrap(ErrStructuralMismatch, "config needs a symmetry and a backend")
	}
	if c.Fermionic != nil && len(c.Fermionic) != c.Sym.NSym() {
		return errors.Wrapf(ErrStructuralMismatch,
			"fermionic flags length %d does not match symmetry rank %d", len(c.Fermionic), c.Sym.NSym())
	}
	return nil
}

func (c *Config) zeroCharge() Charge {
	return make(Charge, c.Sym.NSym())
}

func (c *Config) fermionic() bool {
	for _, f := range c.Fermionic {
		if f {
			return true
		}
	}
	return false
}

// compatibleConfigs checks that two tensors may appear in one
// contraction: same group, same element type, same backend.
func compatibleConfigs(a, b *Config) error {
	if a.Sym.Name() != b.Sym.Name() || a.Sym.NSym() != b.Sym.NSym() {
		return errors.Wrapf(ErrStructuralMismatch, "symmetry %s does not match %s", a.Sym.Name(), b.Sym.Name())
	}
	if a.DType != b.DType {
		return errors.Wrapf(ErrStructuralMismatch, "element type %s does not match %s", a.DType, b.DType)
	}
	if a.Backend.Name() != b.Backend.Name() {
		return errors.Wrapf(ErrStructuralMismatch, "backend %s does not match %s", a.Backend.Name(), b.Backend.Name())
	}
	return nil
}
