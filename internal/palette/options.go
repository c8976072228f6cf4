package palette

// Options controls how an Averager splits work.
type Options struct {
	// Workers is the number of strip workers; 0 means runtime.NumCPU().
	Workers int

	// ParallelThreshold is the pixel count from which an image is scanned
	// in row strips. 0 disables strip scanning.
	ParallelThreshold int
}

// DefaultOptions returns the options used by the service.
func DefaultOptions() Options {
	return Options{
		Workers:           0,
		ParallelThreshold: 512 * 512,
	}
}

// SequentialOptions always scans on the calling goroutine.
func SequentialOptions() Options {
	return Options{Workers: 1, ParallelThreshold: 0}
}

// WithWorkers sets the strip worker count.
func (opts Options) WithWorkers(n int) Options {
	opts.Workers = n
	return opts
}

// WithParallelThreshold sets the pixel count at which strip scanning starts.
func (opts Options) WithParallelThreshold(pixels int) Options {
	opts.ParallelThreshold = pixels
	return opts
}
