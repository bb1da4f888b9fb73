// Package burst is a synthetic workload: a producer does a slice of CPU
// work every few microseconds and a consumer wakes once a batch of results
// is ready.
package burst

import (
	"hash/fnv"

	"acorn/acornos/kernel"
)

// Config tunes the workload.
type Config struct {
	// Spin is the number of hash rounds per slice.
	Spin int
	// Gap is the pause between slices in microseconds.
	Gap uint32
	// Batch is the number of slices the consumer waits for.
	Batch uint32
}

type Task struct {
	cfg Config

	produced uint32
	consumed uint32
	batches  uint32
	sum      uint32
}

func New(cfg Config) *Task {
	if cfg.Batch == 0 {
		cfg.Batch = 1
	}
	return &Task{cfg: cfg}
}

func (t *Task) Produced() uint32 { return t.produced }
func (t *Task) Batches() uint32  { return t.batches }

// Checksum is the running result of the work slices.
func (t *Task) Checksum() uint32 { return t.sum }

func (t *Task) spin() {
	h := fnv.New32a()
	var b [4]byte
	for i := 0; i < t.cfg.Spin; i++ {
		b[0], b[1], b[2], b[3] = byte(t.sum), byte(t.sum>>8), byte(t.sum>>16), byte(t.sum>>24)
		_, _ = h.Write(b[:])
		t.sum = h.Sum32()
	}
}

func (t *Task) ready() bool {
	return t.produced-t.consumed >= t.cfg.Batch
}

// Produce is the producer body.
func (t *Task) Produce(c *kernel.Coroutine) {
	t.spin()
	t.produced++
	c.DelayMicros(t.cfg.Gap, kernel.Start)
}

// Consume is the consumer body.
func (t *Task) Consume(c *kernel.Coroutine) {
	switch c.Label() {
	case kernel.Start:
		c.Await(t.ready, 1)
	case 1:
		t.consumed += t.cfg.Batch
		t.batches++
		c.Await(t.ready, 1)
	}
}

// Start registers the producer ("burst") and the consumer ("burst-sink").
func (t *Task) Start(r *kernel.Registry) (producer, consumer *kernel.Coroutine) {
	producer = r.New(kernel.BodyFunc(t.Produce), kernel.WithName("burst"))
	consumer = r.New(kernel.BodyFunc(t.Consume), kernel.WithName("burst-sink"))
	return producer, consumer
}
