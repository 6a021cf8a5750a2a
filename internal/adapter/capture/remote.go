// Package capture holds CaptureDevice implementations.
package capture

import (
	"errors"
	"sync"
)

var ErrDeviceStopped = errors.New("capture device stopped")

type DeviceStatus string

const (
	StatusCapturing DeviceStatus = "capturing"
	StatusPaused    DeviceStatus = "paused"
	StatusStopped   DeviceStatus = "stopped"
)

// RemoteDevice stands in for a camera running in a browser or handheld
// scanner. Decoding happens on the client; the client polls Status to know
// whether it should keep feeding decoded text.
type RemoteDevice struct {
	id string

	mu     sync.Mutex
	status DeviceStatus
}

func NewRemoteDevice(id string) *RemoteDevice {
	return &RemoteDevice{id: id, status: StatusPaused}
}

func (d *RemoteDevice) ID() string {
	return d.id
}

func (d *RemoteDevice) Pause() error {
	return d.transition(StatusPaused)
}

func (d *RemoteDevice) Resume() error {
	return d.transition(StatusCapturing)
}

func (d *RemoteDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = StatusStopped
	return nil
}

func (d *RemoteDevice) Status() DeviceStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *RemoteDevice) transition(to DeviceStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == StatusStopped {
		return ErrDeviceStopped
	}
	d.status = to
	return nil
}
