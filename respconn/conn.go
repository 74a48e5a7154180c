// Package respconn adapts the resp codec onto a net.Conn: a thin
// decode-from-input / encode-to-output pump, plus a pool and registry
// for hosts managing many connections. It knows nothing about Redis
// commands, authentication, or clustering -- those remain the caller's
// concern.
package respconn

import (
	"bufio"
	"context"
	"net"

	"github.com/morikuni/resp/resp"
	"github.com/morikuni/resp/resp/buffer"
)

// Conn represents a RESP-speaking connection.
type Conn interface {
	Send(ctx context.Context, m *resp.Message) error
	Receive(ctx context.Context) (*resp.Message, error)
	Close(ctx context.Context) error
}

const defaultReadChunk = 4096

type conn struct {
	nc  net.Conn
	br  *bufio.Reader
	bw  *bufio.Writer
	dec *resp.Decoder
	agg *resp.Aggregator
	in  *buffer.Bytes
}

// newConn wraps nconn with a codec pump ready to Send and Receive
// resp.Messages.
func newConn(nconn net.Conn) Conn {
	dec := resp.NewDecoder()
	return &conn{
		nc:  nconn,
		br:  bufio.NewReader(nconn),
		bw:  bufio.NewWriter(nconn),
		dec: dec,
		agg: resp.NewAggregator(dec),
		in:  buffer.Wrap(nil),
	}
}

// Send encodes m and writes it to the connection. It ignores ctx
// deadlines beyond what the caller already applied via
// net.Conn.SetWriteDeadline; the codec itself never blocks.
func (c *conn) Send(ctx context.Context, m *resp.Message) error {
	out, err := resp.Encode(m)
	if err != nil {
		return err
	}
	defer out.Release()

	if _, err := c.bw.Write(out.Bytes()); err != nil {
		return err
	}
	return c.bw.Flush()
}

// Receive reads from the connection until one complete top-level
// message has been decoded, growing its internal buffer as needed.
func (c *conn) Receive(ctx context.Context) (*resp.Message, error) {
	for {
		msg, err := c.agg.Next(c.in)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}

		chunk := make([]byte, defaultReadChunk)
		n, err := c.br.Read(chunk)
		if n > 0 {
			c.in.Append(chunk[:n])
		}
		if err != nil {
			return nil, err
		}
	}
}

// Close releases any aggregator frames still open and closes the
// underlying net.Conn.
func (c *conn) Close(ctx context.Context) error {
	// best effort: drop any partially-aggregated frames, then close
	// the socket regardless of whether that release succeeded.
	_ = c.agg.Release()
	return c.nc.Close()
}
