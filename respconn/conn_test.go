package respconn

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/morikuni/resp/resp"
	"github.com/morikuni/resp/resp/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeOnlyConn struct {
	*bytes.Buffer
}

func (c writeOnlyConn) Read([]byte) (int, error)        { return 0, net.ErrClosed }
func (c writeOnlyConn) LocalAddr() net.Addr              { return nil }
func (c writeOnlyConn) RemoteAddr() net.Addr             { return nil }
func (c writeOnlyConn) SetDeadline(time.Time) error      { return nil }
func (c writeOnlyConn) SetReadDeadline(time.Time) error  { return nil }
func (c writeOnlyConn) SetWriteDeadline(time.Time) error { return nil }
func (c writeOnlyConn) Close() error                     { return nil }

func mustMessage(t *testing.T, f func() (*resp.Message, error)) *resp.Message {
	t.Helper()
	m, err := f()
	require.NoError(t, err)
	return m
}

func TestConn_Send(t *testing.T) {
	cases := map[string]struct {
		msg  *resp.Message
		want string
	}{
		"simple string": {
			msg:  mustMessage(t, func() (*resp.Message, error) { return resp.SimpleString([]byte("Hello")) }),
			want: "+Hello\r\n",
		},
		"error": {
			msg:  mustMessage(t, func() (*resp.Message, error) { return resp.Error([]byte("World")) }),
			want: "-World\r\n",
		},
		"integer": {
			msg:  resp.Integer(-123),
			want: ":-123\r\n",
		},
		"bulk string": {
			msg:  resp.BulkString(buffer.Wrap([]byte("hello"))),
			want: "$5\r\nhello\r\n",
		},
		"bulk string empty": {
			msg:  resp.EmptyBulkString,
			want: "$0\r\n\r\n",
		},
		"bulk string nil": {
			msg:  resp.NullBulkString,
			want: "$-1\r\n",
		},
		"array": {
			msg: resp.Array([]*resp.Message{
				mustMessage(t, func() (*resp.Message, error) { return resp.SimpleString([]byte("Hello")) }),
				resp.Integer(-123),
			}),
			want: "*2\r\n+Hello\r\n:-123\r\n",
		},
		"array nil": {
			msg:  resp.NullArray,
			want: "*-1\r\n",
		},
		"array empty": {
			msg:  resp.EmptyArray,
			want: "*0\r\n",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			c := newConn(writeOnlyConn{buf})

			err := c.Send(context.Background(), tc.msg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestConn_Receive(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("+OK\r\n"))
	}()

	c := newConn(server)
	msg, err := c.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resp.TypeSimpleString, msg.Type())
	assert.Equal(t, "OK", msg.Str())
}
