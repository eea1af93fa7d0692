// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Session is one call's connection to an agent: a connected UDP socket and,
// for v3, a private USM instance. It is not safe for concurrent use.
type Session struct {
	target    Target
	registry  *ProtocolRegistry
	logger    *slog.Logger
	conn      net.Conn
	requestID int32
	usm       *usmState
}

// newLocalEngineID returns an RFC 3411 engine ID with format 5 (octets)
// carrying a random UUID.
func newLocalEngineID() []byte {
	id := uuid.New()
	return append([]byte{0x80, 0x00, 0x00, 0x00, 0x05}, id[:]...)
}

// OpenSession dials the target and prepares the security state.
//
// For SNMPv3 identity must be set and its algorithms must already be in the
// registry (see ProtocolRegistry.RegisterSelection). The remote engine is
// discovered on the first request, not here.
//
// Whatever was opened is closed again when an error is returned.
func OpenSession(target Target, identity *UsmIdentity, registry *ProtocolRegistry, logger *slog.Logger) (s *Session, err error) {
	if logger == nil {
		logger = discardLogger()
	}
	if registry == nil {
		registry = NewProtocolRegistry()
	}
	if target.TimeoutMs <= 0 {
		target.TimeoutMs = SNMP_DEFAULTTIMEOUT_MS
	}
	if target.Retries < 0 {
		target.Retries = 0
	}
	s = &Session{
		target:    target,
		registry:  registry,
		logger:    logger,
		requestID: rand.Int31n(1 << 30),
	}
	defer func() {
		if err != nil {
			s.Close()
			s = nil
		}
	}()

	switch target.Version {
	case SNMPVersion1, SNMPVersion2c:
		if _, ok := target.Security.(CommunitySecurity); !ok {
			return s, TargetError{Reason: target.Version.String() + " target needs community security"}
		}
	case SNMPVersion3:
		us, ok := target.Security.(UserSecurity)
		if !ok {
			return s, TargetError{Reason: "v3 target needs user security"}
		}
		if identity == nil {
			return s, TargetError{Reason: "v3 target without USM identity"}
		}
		s.usm = newUsmState(newLocalEngineID(), us.SecurityLevel)
		if err = s.usm.addUser(*identity, registry); err != nil {
			return s, err
		}
	default:
		return s, TargetError{Reason: "unsupported SNMP version " + target.Version.String()}
	}

	//Таймаут на случай долгого разрешения имени
	Ds := net.Dialer{Timeout: 10 * time.Second}
	DialAddress := net.JoinHostPort(target.Address.Host, strconv.Itoa(target.Address.Port))
	conn, derr := Ds.Dial("udp", DialAddress)
	if derr != nil {
		return s, TransportError{Op: "dial", Err: derr}
	}
	s.conn = conn
	return s, nil
}

// Close releases the socket. It can be called any number of times.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) Target() Target { return s.target }

func (s *Session) nextRequestID() int32 {
	s.requestID++
	if s.requestID <= 0 {
		s.requestID = 1
	}
	return s.requestID
}

// exchange sends one request PDU with a null binding per OID and returns the
// decoded answer.
func (s *Session) exchange(pduType int, oids [][]int) (SNMP_DecodedPDU, error) {
	if s.conn == nil {
		return SNMP_DecodedPDU{}, TransportError{Op: "write", Err: net.ErrClosed}
	}
	if s.target.Version == SNMPVersion3 {
		return s.exchangeV3(pduType, oids)
	}
	return s.exchangeCommunity(pduType, oids)
}

func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// roundTrip writes packet up to Retries+1 times and waits Timeout for an
// answer after each write. parse returns errMismatch for packets that belong
// to another request; those are dropped and the wait goes on.
func (s *Session) roundTrip(packet []byte, requestID int32, parse func([]byte) (SNMP_DecodedPDU, error)) (SNMP_DecodedPDU, error) {
	timeout := time.Duration(s.target.TimeoutMs) * time.Millisecond
	attempts := s.target.Retries + 1
	p := make([]byte, SNMP_BUFFERSIZE)

	for attempt := 1; attempt <= attempts; attempt++ {
		s.logger.Debug("snmp request",
			"target", s.target.Address.String(),
			"version", s.target.Version.String(),
			"request_id", requestID,
			"attempt", attempt)

		deadline := time.Now().Add(timeout)
		if err := s.conn.SetDeadline(deadline); err != nil {
			return SNMP_DecodedPDU{}, TransportError{Op: "write", Err: err}
		}
		// ICMP port unreachable приходит как ECONNREFUSED - считаем потерей пакета
		if _, err := s.conn.Write(packet); err != nil && !isConnRefused(err) {
			return SNMP_DecodedPDU{}, TransportError{Op: "write", Err: err}
		}

		for {
			rlen, err := s.conn.Read(p)
			if err != nil {
				var nerror net.Error
				if errors.As(err, &nerror) && nerror.Timeout() {
					break
				}
				if isConnRefused(err) {
					time.Sleep(time.Until(deadline))
					break
				}
				return SNMP_DecodedPDU{}, TransportError{Op: "read", Err: err}
			}
			decoded, perr := parse(p[:rlen])
			if errors.Is(perr, errMismatch) {
				//Принял ответ, но это дубликат или неправильный ID, ждем следующего пакета
				continue
			}
			return decoded, perr
		}
	}
	return SNMP_DecodedPDU{}, NoResponseError{Target: s.target.Address.String(), Attempts: attempts, Timeout: timeout}
}
