package browser

// NewWithFunc creates an Opener that calls fn instead of the system browser.
func NewWithFunc(fn func(url string) error) *Opener {
	return &Opener{open: fn}
}
