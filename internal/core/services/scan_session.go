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

type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionArmed      SessionState = "armed"
	SessionProcessing SessionState = "processing"
	SessionClosed     SessionState = "closed"
)

type ScanSessionOptions struct {
	// CloseOnSuccess ends the session after the first successful redemption.
	CloseOnSuccess bool
	// OnResult receives results of redemptions started by OnDecoded.
	// Results of a session closed mid-flight are not delivered.
	OnResult func(domain.RedemptionResult)
}

// ScanSession feeds decoded symbols from one capture device into
// redemption, one at a time. Decode events arriving while a redemption is in
// flight are dropped, not queued.
type ScanSession struct {
	id         uuid.UUID
	operatorID uuid.UUID
	device     ports.CaptureDevice
	redeemer   Redeemer
	opts       ScanSessionOptions
	baseCtx    context.Context
	now        func() time.Time

	// onClose runs once, under mu, when the session reaches closed.
	onClose func()

	mu           sync.Mutex
	state        SessionState
	lastActivity time.Time
	inflight     sync.WaitGroup
}

func NewScanSession(ctx context.Context, redeemer Redeemer, device ports.CaptureDevice, operatorID uuid.UUID, opts ScanSessionOptions) *ScanSession {
	return &ScanSession{
		id:           uuid.New(),
		operatorID:   operatorID,
		device:       device,
		redeemer:     redeemer,
		opts:         opts,
		baseCtx:      context.WithoutCancel(ctx),
		now:          time.Now,
		state:        SessionIdle,
		lastActivity: time.Now(),
	}
}

func (s *ScanSession) ID() uuid.UUID         { return s.id }
func (s *ScanSession) OperatorID() uuid.UUID { return s.operatorID }
func (s *ScanSession) DeviceID() string      { return s.device.ID() }

func (s *ScanSession) Device() ports.CaptureDevice { return s.device }

func (s *ScanSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ScanSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Arm starts capturing. Arming an armed or processing session is a no-op.
func (s *ScanSession) Arm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionClosed:
		return domain.ErrSessionClosed
	case SessionIdle:
		if err := s.device.Resume(); err != nil {
			return err
		}
		s.state = SessionArmed
		s.lastActivity = s.now()
	}

	return nil
}

// OnDecoded is the capture library callback. It returns immediately; the
// redemption runs on its own goroutine and its result goes to OnResult.
func (s *ScanSession) OnDecoded(text string) {
	if err := s.begin(); err != nil {
		return
	}

	go func() {
		defer s.inflight.Done()

		result := s.redeemer.Redeem(s.baseCtx, text, s.operatorID)
		if s.finish(result) && s.opts.OnResult != nil {
			s.opts.OnResult(result)
		}
	}()
}

// Submit runs one redemption synchronously. It returns ErrSessionBusy when
// another code is being processed and ErrSessionClosed when the session was
// closed before or during the attempt. A redemption that completes after
// Close is kept; only its result is discarded.
func (s *ScanSession) Submit(ctx context.Context, text string) (domain.RedemptionResult, error) {
	if err := s.begin(); err != nil {
		return domain.RedemptionResult{}, err
	}
	defer s.inflight.Done()

	result := s.redeemer.Redeem(context.WithoutCancel(ctx), text, s.operatorID)
	if !s.finish(result) {
		return domain.RedemptionResult{}, domain.ErrSessionClosed
	}

	return result, nil
}

// Close stops the device immediately. In-flight redemptions run to
// completion. Close is idempotent.
func (s *ScanSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return nil
	}

	s.markClosedLocked()
	return s.device.Stop()
}

func (s *ScanSession) markClosedLocked() {
	s.state = SessionClosed
	if s.onClose != nil {
		s.onClose()
	}
}

// Wait blocks until in-flight redemptions have finished.
func (s *ScanSession) Wait() {
	s.inflight.Wait()
}

func (s *ScanSession) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionClosed:
		return domain.ErrSessionClosed
	case SessionIdle, SessionProcessing:
		metrics.ScanEventsDropped.Inc()
		return domain.ErrSessionBusy
	}

	s.state = SessionProcessing
	s.lastActivity = s.now()
	s.inflight.Add(1)

	if err := s.device.Pause(); err != nil {
		logger.Warnf(s.baseCtx, "scan session %s: pausing device %s: %v", s.id, s.device.ID(), err)
	}

	return nil
}

// finish reports whether the result should be delivered.
func (s *ScanSession) finish(result domain.RedemptionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return false
	}

	s.lastActivity = s.now()

	if s.opts.CloseOnSuccess && result.OK() {
		s.markClosedLocked()
		if err := s.device.Stop(); err != nil {
			logger.Warnf(s.baseCtx, "scan session %s: stopping device %s: %v", s.id, s.device.ID(), err)
		}
		return true
	}

	s.state = SessionArmed
	if err := s.device.Resume(); err != nil {
		logger.Warnf(s.baseCtx, "scan session %s: resuming device %s: %v", s.id, s.device.ID(), err)
	}

	return true
}
