package logger

import (
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"golang.org/x/time/rate"
)

// Limited forwards warnings at a bounded rate. Suppressed events are counted
// and reported on the next one that passes.
type Limited struct {
	l          Logger
	limiter    *rate.Limiter
	perKey     *catrate.Limiter
	suppressed uint64
}

// NewLimited allows one event per every, with bursts of burst.
func NewLimited(l Logger, every time.Duration, burst int) *Limited {
	return &Limited{
		l:       l,
		limiter: rate.NewLimiter(rate.Every(every), max(1, burst)),
	}
}

// PerKey additionally caps WarnFor at n events per window for each key.
func (w *Limited) PerKey(window time.Duration, n int) *Limited {
	w.perKey = catrate.NewLimiter(map[time.Duration]int{window: max(1, n)})
	return w
}

// Warn logs msg unless the rate is exceeded.
func (w *Limited) Warn(msg string, fields ...Field) {
	w.warnAt(time.Now(), msg, fields...)
}

// WarnFor is Warn with a per-key budget checked first. Keys must be
// comparable.
func (w *Limited) WarnFor(key any, msg string, fields ...Field) {
	if w.perKey != nil {
		if _, ok := w.perKey.Allow(key); !ok {
			w.suppressed++
			return
		}
	}
	w.warnAt(time.Now(), msg, fields...)
}

func (w *Limited) warnAt(now time.Time, msg string, fields ...Field) {
	if !w.limiter.AllowN(now, 1) {
		w.suppressed++
		return
	}
	if w.suppressed > 0 {
		fields = append(fields, Uint64("suppressed", w.suppressed))
		w.suppressed = 0
	}
	w.l.Warn(msg, fields...)
}

// Suppressed is the number of events dropped since the last one logged.
func (w *Limited) Suppressed() uint64 { return w.suppressed }
