package identity

import (
	"context"
	"sync"
)

// Client is the AuthService of one logical portal client. It holds at most
// one session and notifies observers whenever it changes.
type Client struct {
	auth *Authenticator

	mu        sync.Mutex
	session   *Session
	observers map[int]func(*Principal)
	nextID    int
}

var _ AuthService = (*Client)(nil)

func NewClient(auth *Authenticator) *Client {
	return &Client{auth: auth, observers: make(map[int]func(*Principal))}
}

func (c *Client) SignInAnonymously(ctx context.Context) (*Principal, error) {
	s, err := c.auth.Anonymous(ctx)
	if err != nil {
		return nil, err
	}
	c.set(s)
	return s.Principal, nil
}

func (c *Client) SignInWithCredentials(ctx context.Context, email, password string) (*Principal, error) {
	s, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.set(s)
	return s.Principal, nil
}

func (c *Client) SignOut(_ context.Context) error {
	c.set(nil)
	return nil
}

// Session returns the current session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) OnPrincipalChanged(fn func(*Principal)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	current := principalOf(c.session)
	c.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) set(s *Session) {
	c.mu.Lock()
	c.session = s
	p := principalOf(s)
	fns := make([]func(*Principal), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

func principalOf(s *Session) *Principal {
	if s == nil {
		return nil
	}
	return s.Principal
}
