package it

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ringpb "hashring/internal/gen/api"
	"hashring/internal/node"
)

// Cluster represents a set of independent ringd processes
type Cluster struct {
	nodes      []*Node
	logDir     string
	binaryPath string
	mu         sync.Mutex
}

// Node represents a single ringd process
type Node struct {
	ID      string
	Addr    string
	Port    int
	args    []string
	cmd     *exec.Cmd
	logFile *os.File
	conn    *grpc.ClientConn
	client  *node.Client
	health  healthpb.HealthClient
}

// NewCluster creates a new test cluster harness
func NewCluster(binaryPath string) (*Cluster, error) {
	logDir := filepath.Join(".local", "it-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Cluster{
		nodes:      make([]*Node, 0),
		logDir:     logDir,
		binaryPath: binaryPath,
	}, nil
}

// StartNode starts a ringd process seeded with servers
func (c *Cluster) StartNode(ctx context.Context, nodeID string, port int, servers []string, rf int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := &Node{
		ID:   nodeID,
		Addr: fmt.Sprintf("127.0.0.1:%d", port),
		Port: port,
		args: []string{
			"--node-id", nodeID,
			"--listen", fmt.Sprintf(":%d", port),
			"--servers", strings.Join(servers, ","),
			"--replication-factor", fmt.Sprintf("%d", rf),
			"--log-level", "debug",
		},
	}

	if err := c.launch(ctx, n); err != nil {
		return err
	}
	c.nodes = append(c.nodes, n)
	return nil
}

// launch starts the process for n, connects to it and waits for it to
// report healthy. Callers must hold c.mu.
func (c *Cluster) launch(ctx context.Context, n *Node) error {
	logPath := filepath.Join(c.logDir, fmt.Sprintf("%s.log", n.ID))
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, n.args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start node %s: %w", n.ID, err)
	}

	conn, err := grpc.NewClient(n.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		logFile.Close()
		return fmt.Errorf("failed to create client for node %s: %w", n.ID, err)
	}

	n.cmd = cmd
	n.logFile = logFile
	n.conn = conn
	n.client = node.NewClient(conn)
	n.health = healthpb.NewHealthClient(conn)

	if err := c.waitForReady(ctx, n, 10*time.Second); err != nil {
		n.Stop()
		return fmt.Errorf("node %s failed to become ready: %w", n.ID, err)
	}
	return nil
}

// waitForReady waits for a node to be ready by checking health endpoint
func (c *Cluster) waitForReady(ctx context.Context, n *Node, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for node %s to be ready", n.ID)
			}

			healthCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			resp, err := n.health.Check(healthCtx, &healthpb.HealthCheckRequest{
				Service: ringpb.Ring_ServiceDesc.ServiceName,
			})
			cancel()

			if err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING {
				return nil
			}
		}
	}
}

// Stop stops all nodes in the cluster
func (c *Cluster) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		n.Stop()
	}
	c.nodes = nil
}

// Stop stops a single node
func (n *Node) Stop() {
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	if n.cmd != nil && n.cmd.Process != nil {
		n.cmd.Process.Kill()
		n.cmd.Wait()
	}
	if n.logFile != nil {
		n.logFile.Close()
	}
}

// GetClient returns the ring client for a node
func (n *Node) GetClient() *node.Client {
	return n.client
}

// GetNode returns a node by ID
func (c *Cluster) GetNode(nodeID string) *Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		if n.ID == nodeID {
			return n
		}
	}
	return nil
}

// RestartNode kills a node and starts it again with the same arguments.
// The ring keeps no state across restarts, so only the seeded servers
// survive.
func (c *Cluster) RestartNode(ctx context.Context, nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		if n.ID == nodeID {
			n.Stop()
			return c.launch(ctx, n)
		}
	}
	return fmt.Errorf("node %s not found", nodeID)
}
