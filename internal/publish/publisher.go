package publish

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

// serveObserver sends the record whenever its revision moves and otherwise
// probes the connection until the observer goes away or ctx ends.
func (s *Server) serveObserver(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	remote := conn.RemoteAddr().String()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	s.metrics.ObserverConnected()
	defer s.metrics.ObserverDisconnected()
	s.logger.Info("observer connected", logging.Field("observer", id), logging.Field("remote", remote))

	var sent uint64
	for {
		changed := s.store.Changed()
		rec := s.store.Snapshot()
		if rec.HasPrediction() && rec.Revision != sent {
			if err := s.send(conn, rec.Status()); err != nil {
				s.logDisconnect(ctx, id, remote, err)
				return
			}
			sent = rec.Revision
			s.metrics.RecordStatusSent()
			s.logger.Debug("sent status",
				logging.Field("observer", id),
				logging.Field("revision", rec.Revision),
				logging.Field("saving", rec.IsSaving))
			continue
		}

		liveness, err := AwaitInbound(conn, s.opts.ProbeTimeout, changed)
		if liveness == Dead {
			s.logDisconnect(ctx, id, remote, err)
			return
		}
	}
}

func (s *Server) send(conn net.Conn, status wire.Status) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
		return err
	}
	return wire.WriteStatus(conn, status)
}

func (s *Server) logDisconnect(ctx context.Context, id, remote string, err error) {
	switch {
	case ctx.Err() != nil:
		s.logger.Debug("closing observer: context canceled", logging.Field("observer", id))
	case err == nil || IsClosedConn(err):
		s.logger.Info("observer disconnected", logging.Field("observer", id), logging.Field("remote", remote))
	default:
		s.logger.Warn("observer connection failed",
			logging.Field("observer", id),
			logging.Field("remote", remote),
			logging.Field("error", err))
	}
}
