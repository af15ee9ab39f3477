package stats

import "github.com/dbsmedya/goshape/internal/sketch"

// Distinct counts distinct scalar values for one field. Below the
// configured threshold it keeps an exact set; the first value that pushes
// the set past the threshold downgrades it to a HyperLogLog sketch. The
// downgrade is one-way: once approximate, a Distinct never returns to
// exact mode, and the transition point depends only on the values seen,
// so identical input order always downgrades at the identical record.
type Distinct struct {
	threshold int
	exact     map[string]struct{}
	approx    *sketch.HyperLogLog
}

// NewDistinct returns an exact-mode counter that downgrades once more
// than threshold distinct values have been seen.
func NewDistinct(threshold int) *Distinct {
	return &Distinct{
		threshold: threshold,
		exact:     make(map[string]struct{}),
	}
}

// Observe records one value by its canonical key.
func (d *Distinct) Observe(key string) {
	if d.approx != nil {
		d.approx.AddString(key)
		return
	}
	d.exact[key] = struct{}{}
	if len(d.exact) > d.threshold {
		d.downgrade()
	}
}

// Approximate reports whether the counter has downgraded to the sketch.
func (d *Distinct) Approximate() bool { return d.approx != nil }

// Count returns the exact set size or the sketch estimate.
func (d *Distinct) Count() uint64 {
	if d.approx != nil {
		return d.approx.Estimate()
	}
	return uint64(len(d.exact))
}

// Merge folds other into d. If either side is approximate the result is
// approximate; two exact sides union their sets and downgrade only if the
// union crosses the threshold. Register-max and set-union are both
// commutative, so merge order cannot change the outcome.
func (d *Distinct) Merge(other *Distinct) error {
	if other == nil {
		return nil
	}
	if d.approx == nil && other.approx == nil {
		for k := range other.exact {
			d.exact[k] = struct{}{}
		}
		if len(d.exact) > d.threshold {
			d.downgrade()
		}
		return nil
	}
	if d.approx == nil {
		d.downgrade()
	}
	if other.approx != nil {
		return d.approx.Merge(other.approx)
	}
	for k := range other.exact {
		d.approx.AddString(k)
	}
	return nil
}

func (d *Distinct) downgrade() {
	d.approx = sketch.NewDefault()
	for k := range d.exact {
		d.approx.AddString(k)
	}
	d.exact = nil
}
