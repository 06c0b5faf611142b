package indicator

import "math"

// window is a fixed-capacity ring buffer holding the most recent samples.
type window struct {
	buf   []float64
	start int
	size  int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]float64, capacity)}
}

// push appends v, evicting the oldest sample once the window is full.
func (w *window) push(v float64) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = v
		w.size++

		return
	}

	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

func (w *window) full() bool {
	return w.size == len(w.buf)
}

// at returns the i-th sample, oldest first.
func (w *window) at(i int) float64 {
	return w.buf[(w.start+i)%len(w.buf)]
}

func (w *window) mean() float64 {
	sum := 0.0
	for i := 0; i < w.size; i++ {
		sum += w.at(i)
	}

	return sum / float64(w.size)
}

// stddev is the population standard deviation around mean.
func (w *window) stddev(mean float64) float64 {
	sum := 0.0

	for i := 0; i < w.size; i++ {
		d := w.at(i) - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(w.size))
}

// argMax returns the index of the newest maximum, oldest first.
func (w *window) argMax() int {
	best := 0

	for i := 1; i < w.size; i++ {
		if w.at(i) >= w.at(best) {
			best = i
		}
	}

	return best
}

// argMin returns the index of the newest minimum, oldest first.
func (w *window) argMin() int {
	best := 0

	for i := 1; i < w.size; i++ {
		if w.at(i) <= w.at(best) {
			best = i
		}
	}

	return best
}
