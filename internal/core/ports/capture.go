package ports

// CaptureDevice is the minimal surface a scan session needs from a camera
// or scanner driver. The driver delivers decoded text through the session's
// OnDecoded callback.
type CaptureDevice interface {
	ID() string
	Pause() error
	Resume() error
	Stop() error
}
