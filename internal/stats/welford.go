package stats

import "math"

// Welford accumulates running numeric statistics in one pass using
// Welford's update, which stays numerically stable where a naive
// sum-of-squares would cancel catastrophically.
type Welford struct {
	n    int64
	min  float64
	max  float64
	mean float64
	m2   float64
}

// Observe folds one sample into the state.
func (w *Welford) Observe(x float64) {
	w.n++
	if w.n == 1 {
		w.min, w.max = x, x
	} else {
		if x < w.min {
			w.min = x
		}
		if x > w.max {
			w.max = x
		}
	}
	d := x - w.mean
	w.mean += d / float64(w.n)
	w.m2 += d * (x - w.mean)
}

// Merge folds other into w using the parallel combination formula
// (Chan et al.), so two shards aggregated independently combine into the
// same moments the single-pass form would produce.
func (w *Welford) Merge(other *Welford) {
	if other == nil || other.n == 0 {
		return
	}
	if w.n == 0 {
		*w = *other
		return
	}
	if other.min < w.min {
		w.min = other.min
	}
	if other.max > w.max {
		w.max = other.max
	}
	n := w.n + other.n
	d := other.mean - w.mean
	w.mean += d * float64(other.n) / float64(n)
	w.m2 += other.m2 + d*d*float64(w.n)*float64(other.n)/float64(n)
	w.n = n
}

// N returns how many samples were observed.
func (w *Welford) N() int64 { return w.n }

// Min returns the smallest sample, or NaN before any sample.
func (w *Welford) Min() float64 {
	if w.n == 0 {
		return math.NaN()
	}
	return w.min
}

// Max returns the largest sample, or NaN before any sample.
func (w *Welford) Max() float64 {
	if w.n == 0 {
		return math.NaN()
	}
	return w.max
}

// Mean returns the running mean, or NaN before any sample.
func (w *Welford) Mean() float64 {
	if w.n == 0 {
		return math.NaN()
	}
	return w.mean
}

// Variance returns the population variance.
func (w *Welford) Variance() float64 {
	if w.n == 0 {
		return math.NaN()
	}
	return w.m2 / float64(w.n)
}

// LengthStats tracks string length distribution. All state is integral,
// so merges are exact in any order.
type LengthStats struct {
	n   int64
	min int64
	max int64
	sum int64
}

// Observe folds one length in.
func (l *LengthStats) Observe(n int64) {
	l.n++
	if l.n == 1 {
		l.min, l.max = n, n
	} else {
		if n < l.min {
			l.min = n
		}
		if n > l.max {
			l.max = n
		}
	}
	l.sum += n
}

// Merge folds other into l.
func (l *LengthStats) Merge(other *LengthStats) {
	if other == nil || other.n == 0 {
		return
	}
	if l.n == 0 {
		*l = *other
		return
	}
	if other.min < l.min {
		l.min = other.min
	}
	if other.max > l.max {
		l.max = other.max
	}
	l.n += other.n
	l.sum += other.sum
}

// N returns how many lengths were observed.
func (l *LengthStats) N() int64 { return l.n }

// Min returns the shortest observed length.
func (l *LengthStats) Min() int64 { return l.min }

// Max returns the longest observed length.
func (l *LengthStats) Max() int64 { return l.max }

// Avg returns the mean length.
func (l *LengthStats) Avg() float64 {
	if l.n == 0 {
		return math.NaN()
	}
	return float64(l.sum) / float64(l.n)
}
