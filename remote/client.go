package remote

import (
	"fmt"
	"net"

	"github.com/snapscroll/snapscroll/input"
)

// Client streams wheel deltas to a snapscroll daemon. Not safe for
// concurrent use.
type Client struct {
	conn net.Conn
}

// Dial connects, performs the key handshake and sends the hello record.
func Dial(addr, key string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	sc, err := handshake(conn, key, false)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	if _, err := sc.Write(hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send hello: %w", err)
	}
	return &Client{conn: sc}, nil
}

// Send reports one delta on the given axis code.
func (c *Client) Send(code uint16, value int32) error {
	b, _ := Frame{Code: code, Value: value}.MarshalBinary()
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// Scroll reports a vertical delta; Pan a horizontal one.
func (c *Client) Scroll(value int32) error { return c.Send(input.RelWheel, value) }
func (c *Client) Pan(value int32) error    { return c.Send(input.RelHWheel, value) }

func (c *Client) Close() error { return c.conn.Close() }
