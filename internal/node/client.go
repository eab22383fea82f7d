package node

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	ringpb "hashring/internal/gen/api"
	"hashring/internal/ring"
)

// Client is a typed wrapper around the Ring gRPC client. Errors for an
// empty ring, a duplicate server or a full ring match the ring package's
// sentinel errors under errors.Is.
type Client struct {
	rpc ringpb.RingClient
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rpc: ringpb.NewRingClient(cc)}
}

// MapKey returns the server owning key.
func (c *Client) MapKey(ctx context.Context, key string) (string, error) {
	resp, err := c.rpc.MapKey(ctx, wrapperspb.String(key))
	if err != nil {
		return "", fromStatus(err)
	}
	return resp.GetValue(), nil
}

// AddServer registers a server.
func (c *Client) AddServer(ctx context.Context, name string) error {
	_, err := c.rpc.AddServer(ctx, wrapperspb.String(name))
	return fromStatus(err)
}

// RemoveServer deregisters a server and reports whether it was registered.
func (c *Client) RemoveServer(ctx context.Context, name string) (bool, error) {
	resp, err := c.rpc.RemoveServer(ctx, wrapperspb.String(name))
	if err != nil {
		return false, fromStatus(err)
	}
	return resp.GetValue(), nil
}

// AssignKey resolves and records key.
func (c *Client) AssignKey(ctx context.Context, key string) (string, error) {
	resp, err := c.rpc.AssignKey(ctx, wrapperspb.String(key))
	if err != nil {
		return "", fromStatus(err)
	}
	return resp.GetValue(), nil
}

// SetKey records an explicit assignment.
func (c *Client) SetKey(ctx context.Context, key, server string) error {
	_, err := c.rpc.SetKey(ctx, setKeyToProto(key, server))
	return fromStatus(err)
}

// DeleteKey removes an assignment and reports whether it existed.
func (c *Client) DeleteKey(ctx context.Context, key string) (bool, error) {
	resp, err := c.rpc.DeleteKey(ctx, wrapperspb.String(key))
	if err != nil {
		return false, fromStatus(err)
	}
	return resp.GetValue(), nil
}

// PreferenceList returns up to n distinct servers for key.
func (c *Client) PreferenceList(ctx context.Context, key string, n int) ([]string, error) {
	resp, err := c.rpc.PreferenceList(ctx, preferenceListToProto(key, n))
	if err != nil {
		return nil, fromStatus(err)
	}
	return listToStrings(resp), nil
}

// Snapshot fetches a copy of the remote ring's tables.
func (c *Client) Snapshot(ctx context.Context) (ring.Snapshot, error) {
	resp, err := c.rpc.Snapshot(ctx, &emptypb.Empty{})
	if err != nil {
		return ring.Snapshot{}, fromStatus(err)
	}
	return snapshotFromProto(resp)
}

// ClientManager manages gRPC clients to ring nodes.
type ClientManager struct {
	mu       sync.RWMutex
	conns    map[string]*grpc.ClientConn
	clients  map[string]*Client
	dialOpts []grpc.DialOption
}

// NewClientManager creates a new client manager. Extra dial options are
// appended to the defaults (insecure transport, request ID stamping).
func NewClientManager(opts ...grpc.DialOption) *ClientManager {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(requestIDInterceptor()),
	}
	return &ClientManager{
		conns:    make(map[string]*grpc.ClientConn),
		clients:  make(map[string]*Client),
		dialOpts: append(dialOpts, opts...),
	}
}

// GetClient returns a client for the given node address.
// Creates a new connection if one doesn't exist.
func (cm *ClientManager) GetClient(addr string) (*Client, error) {
	cm.mu.RLock()
	client, exists := cm.clients[addr]
	cm.mu.RUnlock()

	if exists {
		return client, nil
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	// Double-check after acquiring write lock
	if client, exists := cm.clients[addr]; exists {
		return client, nil
	}

	conn, err := grpc.NewClient(addr, cm.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", addr, err)
	}

	client = NewClient(conn)
	cm.conns[addr] = conn
	cm.clients[addr] = client
	return client, nil
}

// Close closes all client connections.
func (cm *ClientManager) Close() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var errs []error
	for addr, conn := range cm.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", addr, err))
		}
	}
	cm.conns = make(map[string]*grpc.ClientConn)
	cm.clients = make(map[string]*Client)
	return errors.Join(errs...)
}
