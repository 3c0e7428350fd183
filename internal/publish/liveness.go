package publish

import (
	"errors"
	"net"
	"os"
	"time"
)

type Liveness int

const (
	Alive Liveness = iota
	Dead
)

func (l Liveness) String() string {
	if l == Dead {
		return "dead"
	}
	return "alive"
}

// AwaitInbound waits up to timeout for the peer to send anything or hang up.
// Inbound bytes are discarded. A timeout means the peer is still there; EOF,
// reset or any other read error means it is gone. A receive on wake cuts the
// wait short and also counts as alive.
func AwaitInbound(conn net.Conn, timeout time.Duration, wake <-chan struct{}) (Liveness, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return Dead, err
	}
	if wake != nil {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-wake:
				_ = conn.SetReadDeadline(time.Now())
			case <-done:
			}
		}()
	}

	var discard [64]byte
	_, err := conn.Read(discard[:])
	if err == nil {
		return Alive, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return Alive, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Alive, nil
	}
	return Dead, err
}
