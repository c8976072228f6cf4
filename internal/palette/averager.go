// Package palette computes the average color of the fully opaque pixels of
// a decoded image.
package palette

import (
	"image"
)

// Averager computes AverageColor values for decoded images.
type Averager interface {
	// Average returns the truncated channel means over pixels with alpha 255,
	// or ErrNoOpaquePixels when there are none.
	Average(img image.Image) (AverageColor, error)

	// Close releases the strip workers.
	Close() error
}

// Average scans img sequentially. It is the reference implementation the
// strip scanner must agree with.
func Average(img image.Image) (AverageColor, error) {
	b := img.Bounds()
	if b.Empty() {
		return AverageColor{}, ErrNoOpaquePixels
	}
	return scanRows(img, b.Min.Y, b.Max.Y).average()
}

type colorAverager struct {
	workerPool *WorkerPool
	options    Options
}

// NewAverager creates an Averager. Images with at least
// opts.ParallelThreshold pixels are scanned in row strips on a worker pool.
func NewAverager(opts Options) Averager {
	a := &colorAverager{options: opts}
	if opts.ParallelThreshold > 0 {
		a.workerPool = NewWorkerPool(opts.Workers)
		a.workerPool.Start()
	}
	return a
}

func (ca *colorAverager) Average(img image.Image) (AverageColor, error) {
	b := img.Bounds()
	if b.Empty() {
		return AverageColor{}, ErrNoOpaquePixels
	}

	if ca.workerPool == nil || b.Dx()*b.Dy() < ca.options.ParallelThreshold || ca.workerPool.Workers() < 2 {
		return scanRows(img, b.Min.Y, b.Max.Y).average()
	}
	return ca.scanStrips(img, b).average()
}

// scanStrips splits the image into horizontal strips, one per worker, and
// merges the partial sums.
func (ca *colorAverager) scanStrips(img image.Image, b image.Rectangle) accumulator {
	height := b.Dy()
	numStrips := ca.workerPool.Workers()
	if height < numStrips {
		numStrips = height
	}
	rowsPerStrip := (height + numStrips - 1) / numStrips

	results := make(chan stripResult, numStrips)
	submitted := 0
	var inline accumulator

	for i := 0; i < numStrips; i++ {
		startY := b.Min.Y + i*rowsPerStrip
		if startY >= b.Max.Y {
			break
		}
		endY := startY + rowsPerStrip
		if endY > b.Max.Y {
			endY = b.Max.Y
		}

		ok := ca.workerPool.Submit(func() {
			var res stripResult
			// every submitted strip must report back, even when it panics
			defer func() {
				if r := recover(); r != nil {
					res.panicked = r
				}
				results <- res
			}()
			res.acc = scanRows(img, startY, endY)
		})
		if ok {
			submitted++
		} else {
			// pool closed underneath us
			inline.merge(scanRows(img, startY, endY))
		}
	}

	total := inline
	var panicked interface{}
	for i := 0; i < submitted; i++ {
		res := <-results
		if res.panicked != nil && panicked == nil {
			panicked = res.panicked
		}
		total.merge(res.acc)
	}
	if panicked != nil {
		panic(panicked)
	}
	return total
}

type stripResult struct {
	acc      accumulator
	panicked interface{}
}

func (ca *colorAverager) Close() error {
	if ca.workerPool != nil {
		ca.workerPool.Close()
	}
	return nil
}

// scanRows accumulates rows [y0, y1) in row-major order.
func scanRows(img image.Image, y0, y1 int) accumulator {
	var acc accumulator
	b := img.Bounds()

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := y0; y < y1; y++ {
			i := nrgba.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				s := nrgba.Pix[i : i+4 : i+4]
				acc.add(PackARGB(s[3], s[0], s[1], s[2]))
				i += 4
			}
		}
		return acc
	}

	for y := y0; y < y1; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			acc.add(Pack(img.At(x, y)))
		}
	}
	return acc
}
