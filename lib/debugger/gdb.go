package debugger

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ARM general register file as presented by a 'g' packet.
const (
	numRegs = 16
	regSP   = 13
	regLR   = 14
	regPC   = 15
)

// GDBRemote reads CPU state from a GDB remote-serial-protocol stub,
// such as the one exposed by QEMU, Renode or OpenOCD on a TCP port.
// It implements Target. Register reads are cached per session since
// the target is halted while the stub is serving us.
type GDBRemote struct {
	conn   io.ReadWriter
	br     *bufio.Reader
	closer io.Closer
	regs   []uint32
}

// NewGDBRemote wraps an established stub connection.
func NewGDBRemote(conn io.ReadWriter) *GDBRemote {
	return &GDBRemote{
		conn: conn,
		br:   bufio.NewReader(conn),
	}
}

// Dial connects to a stub at addr (host:port) over TCP.
func Dial(addr string, timeout time.Duration) (*GDBRemote, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to GDB stub %s", addr)
	}
	g := NewGDBRemote(conn)
	g.closer = conn
	return g, nil
}

// Close releases the underlying connection, if Dial opened one.
func (g *GDBRemote) Close() error {
	if g.closer != nil {
		return g.closer.Close()
	}
	return nil
}

func checksum(payload string) byte {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum += payload[i]
	}
	return sum
}

// send frames payload as $payload#xx and waits for the stub's ack,
// retransmitting once on a '-' nack.
func (g *GDBRemote) send(payload string) error {
	pkt := fmt.Sprintf("$%s#%02x", payload, checksum(payload))
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := io.WriteString(g.conn, pkt); err != nil {
			return errors.Wrap(err, "write packet")
		}
		ack, err := g.br.ReadByte()
		if err != nil {
			return errors.Wrap(err, "read ack")
		}
		switch ack {
		case '+':
			return nil
		case '-':
			continue
		default:
			return errors.Errorf("unexpected ack byte %q", ack)
		}
	}
	return errors.Errorf("stub rejected packet %q twice", payload)
}

// recv reads one framed reply, verifies its checksum and acks it.
func (g *GDBRemote) recv() (string, error) {
	for {
		b, err := g.br.ReadByte()
		if err != nil {
			return "", errors.Wrap(err, "read packet start")
		}
		if b == '$' {
			break
		}
	}
	payload, err := g.br.ReadString('#')
	if err != nil {
		return "", errors.Wrap(err, "read packet body")
	}
	payload = payload[:len(payload)-1]

	var sum [2]byte
	if _, err := io.ReadFull(g.br, sum[:]); err != nil {
		return "", errors.Wrap(err, "read checksum")
	}
	want, err := strconv.ParseUint(string(sum[:]), 16, 8)
	if err != nil {
		return "", errors.Wrap(err, "parse checksum")
	}
	if byte(want) != checksum(payload) {
		if _, werr := io.WriteString(g.conn, "-"); werr != nil {
			return "", errors.Wrapf(werr, "nack corrupted reply %q", payload)
		}
		return "", errors.Errorf("checksum mismatch on reply %q", payload)
	}
	if _, err := io.WriteString(g.conn, "+"); err != nil {
		return "", errors.Wrap(err, "ack reply")
	}
	return payload, nil
}

func (g *GDBRemote) command(payload string) (string, error) {
	if err := g.send(payload); err != nil {
		return "", err
	}
	reply, err := g.recv()
	if err != nil {
		return "", err
	}
	// Exx replies are stub-side errors
	if len(reply) == 3 && reply[0] == 'E' {
		return "", errors.Errorf("stub error %s for command %q", reply[1:], payload)
	}
	return reply, nil
}

// Halted reports whether the target is stopped. The '?' stop-reply is
// Sxx or Txx while halted; W/X replies mean the program is gone.
func (g *GDBRemote) Halted() (bool, error) {
	reply, err := g.command("?")
	if err != nil {
		return false, err
	}
	if len(reply) == 0 {
		return false, errors.New("empty stop reply")
	}
	return reply[0] == 'S' || reply[0] == 'T', nil
}

// readRegisters fetches the general register file via a 'g' packet.
// Each register is 8 hex chars, bytes in target (little-endian) order.
func (g *GDBRemote) readRegisters() ([]uint32, error) {
	if g.regs != nil {
		return g.regs, nil
	}
	reply, err := g.command("g")
	if err != nil {
		return nil, err
	}
	if len(reply) < numRegs*8 {
		return nil, errors.Errorf("short register dump: %d hex chars, want %d", len(reply), numRegs*8)
	}
	raw, err := hex.DecodeString(reply[:numRegs*8])
	if err != nil {
		return nil, errors.Wrap(err, "decode register dump")
	}
	regs := make([]uint32, numRegs)
	for i := range regs {
		regs[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	g.regs = regs
	return regs, nil
}

func (g *GDBRemote) readRegister(n int) (uint32, error) {
	regs, err := g.readRegisters()
	if err != nil {
		return 0, err
	}
	return regs[n], nil
}

func (g *GDBRemote) ReadPC() (uint32, error) {
	return g.readRegister(regPC)
}

func (g *GDBRemote) ReadSP() (uint32, error) {
	return g.readRegister(regSP)
}

func (g *GDBRemote) ReadLR() (uint32, error) {
	return g.readRegister(regLR)
}

// ExecutedInstructions is not part of the remote protocol.
func (g *GDBRemote) ExecutedInstructions() (uint64, error) {
	return 0, ErrNotSupported
}
