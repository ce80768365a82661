package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Client is a thin wrapper over the NATS connection that keeps track of
// subscriptions so Close can drain them.
type Client struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

func New(url string) (*Client, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

func (c *Client) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

func (c *Client) Close() error {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}
