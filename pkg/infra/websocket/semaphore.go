package websocket

// Semaphore is a non-blocking counting semaphore bounding live sessions.
type Semaphore struct {
	slots chan struct{}
}

func NewSemaphore(maxSessions int) *Semaphore {
	if maxSessions < 0 {
		maxSessions = 0
	}
	return &Semaphore{
		slots: make(chan struct{}, maxSessions),
	}
}

func (s *Semaphore) Acquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

func (s *Semaphore) InUse() int {
	return len(s.slots)
}

func (s *Semaphore) Capacity() int {
	return cap(s.slots)
}
