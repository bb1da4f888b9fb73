package profiler

import (
	"math"
	"math/bits"
)

// Binner maps a sample onto a bin index in [0, n).
type Binner interface {
	Bin(v uint32, n int) int
}

// Linear bins are Divider units wide: bin i holds [i*Divider, (i+1)*Divider).
type Linear struct {
	Divider uint32
}

func (l Linear) Bin(v uint32, n int) int {
	div := l.Divider
	if div == 0 {
		div = 1
	}
	return clampBin(uint64(v/div), n)
}

// Log2 bins double in width: bin 0 holds 0-1, bin 1 holds 2-3, bin 2 holds 4-7.
type Log2 struct{}

func (Log2) Bin(v uint32, n int) int {
	i := bits.Len32(v) - 1
	if i < 0 {
		i = 0
	}
	return clampBin(uint64(i), n)
}

// LogBase bins grow by Base: the index is floor(log(1+v) / log(Base)).
type LogBase struct {
	base float64
	inv  float64
}

// NewLogBase precomputes 1/log(base). base must be greater than 1.
func NewLogBase(base float64) LogBase {
	if !(base > 1) {
		panic("profiler: log histogram base must be > 1")
	}
	return LogBase{base: base, inv: 1 / math.Log(base)}
}

// Base returns the exponent base.
func (l LogBase) Base() float64 { return l.base }

func (l LogBase) Bin(v uint32, n int) int {
	x := 1 + float64(v)
	f := l.inv * math.Log(x)
	if f < 0 {
		f = 0
	}
	i := uint64(f)
	// the reciprocal rounds exact powers down
	if math.Pow(l.base, float64(i+1)) <= x {
		i++
	} else if i > 0 && math.Pow(l.base, float64(i)) > x {
		i--
	}
	return clampBin(i, n)
}

func clampBin(i uint64, n int) int {
	if i >= uint64(n) {
		return n - 1
	}
	return int(i)
}
