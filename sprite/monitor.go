package sprite

// Monitor receives progress from a running codec and lets the caller stop
// it between scanlines.
type Monitor interface {
	// Progress reports completion in the range 0 to 1.
	Progress(done float64)

	// Stopped reports whether the caller wants the codec to stop.
	Stopped() bool
}

type nopMonitor struct{}

func (nopMonitor) Progress(float64) {}
func (nopMonitor) Stopped() bool    { return false }

// NopMonitor returns a Monitor that ignores progress and never stops.
func NopMonitor() Monitor { return nopMonitor{} }

// MonitorOrNop returns m, or a NopMonitor if m is nil.
func MonitorOrNop(m Monitor) Monitor {
	if m == nil {
		return nopMonitor{}
	}
	return m
}
