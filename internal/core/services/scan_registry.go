package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports"
	"github.com/srgjo27/campus_ticket/internal/platform/logger"
	"github.com/srgjo27/campus_ticket/internal/platform/metrics"
)

// ScanSessionRegistry tracks open sessions. A capture device belongs to at
// most one open session.
type ScanSessionRegistry struct {
	redeemer    Redeemer
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*ScanSession
	devices  map[string]uuid.UUID
}

func NewScanSessionRegistry(redeemer Redeemer, idleTimeout time.Duration) *ScanSessionRegistry {
	return &ScanSessionRegistry{
		redeemer:    redeemer,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*ScanSession),
		devices:     make(map[string]uuid.UUID),
	}
}

func (r *ScanSessionRegistry) Open(ctx context.Context, operatorID uuid.UUID, device ports.CaptureDevice, opts ScanSessionOptions) (*ScanSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.devices[device.ID()]; ok {
		if existing, ok := r.sessions[id]; ok && existing.State() != SessionClosed {
			return nil, domain.ErrDeviceBusy
		}
		r.removeLocked(id)
	}

	session := NewScanSession(ctx, r.redeemer, device, operatorID, opts)
	session.onClose = metrics.ScanSessionsActive.Dec
	if err := session.Arm(); err != nil {
		return nil, err
	}

	r.sessions[session.ID()] = session
	r.devices[device.ID()] = session.ID()
	metrics.ScanSessionsActive.Inc()

	logger.Infof(ctx, "scan session %s opened on device %s by operator %s", session.ID(), device.ID(), operatorID)

	return session, nil
}

// Get returns an open session. Sessions that closed themselves are pruned.
func (r *ScanSessionRegistry) Get(id uuid.UUID) (*ScanSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if session.State() == SessionClosed {
		r.removeLocked(id)
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

func (r *ScanSessionRegistry) Close(id uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		r.removeLocked(id)
	}
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}

	return session.Close()
}

func (r *ScanSessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*ScanSession, 0, len(r.sessions))
	for id, session := range r.sessions {
		sessions = append(sessions, session)
		r.removeLocked(id)
	}
	r.mu.Unlock()

	for _, session := range sessions {
		_ = session.Close()
		session.Wait()
	}
}

func (r *ScanSessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *ScanSessionRegistry) removeLocked(id uuid.UUID) {
	session, ok := r.sessions[id]
	if !ok {
		return
	}

	delete(r.sessions, id)
	if r.devices[session.DeviceID()] == id {
		delete(r.devices, session.DeviceID())
	}
}

// RunIdleReaper closes sessions idle for longer than the idle timeout
// until ctx is cancelled.
func (r *ScanSessionRegistry) RunIdleReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof(ctx, "Scan session reaper started: checking every %s", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Scan session reaper stopped")
			return
		case <-ticker.C:
			r.reapIdle(ctx)
		}
	}
}

func (r *ScanSessionRegistry) reapIdle(ctx context.Context) {
	if r.idleTimeout <= 0 {
		return
	}

	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*ScanSession
	for id, session := range r.sessions {
		state := session.State()
		if state == SessionClosed || (state != SessionProcessing && session.LastActivity().Before(cutoff)) {
			idle = append(idle, session)
			r.removeLocked(id)
		}
	}
	r.mu.Unlock()

	for _, session := range idle {
		if err := session.Close(); err != nil {
			logger.Warnf(ctx, "closing idle scan session %s: %v", session.ID(), err)
			continue
		}
		logger.Infof(ctx, "scan session %s closed after inactivity", session.ID())
	}
}
