package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultReplicationFactor is the number of virtual nodes per server.
	DefaultReplicationFactor = 15
	// DefaultConsulWait bounds a single blocking catalog query.
	DefaultConsulWait = 30 * time.Second
)

// Consul holds the optional service discovery settings.
type Consul struct {
	// Addr is the consul agent address; empty uses the client default.
	Addr string
	// Service is the catalog service whose healthy instances become ring
	// servers. Empty disables membership sync.
	Service string
	Tag     string
	// Register advertises this process in consul under RegisterName.
	Register     bool
	RegisterName string
	WaitTime     time.Duration
}

// Config holds the ringd configuration.
type Config struct {
	NodeID            string
	ListenAddr        string
	ReplicationFactor int
	Servers           []string
	Consul            Consul
	LogLevel          string
	LogFormat         string
}

// ParseServers parses a comma-separated list of server names:
// "cache-a,cache-b,cache-c"
func ParseServers(serversStr string) ([]string, error) {
	if serversStr == "" {
		return []string{}, nil
	}

	parts := strings.Split(serversStr, ",")
	servers := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate server name: %s", name)
		}
		seen[name] = true
		servers = append(servers, name)
	}

	return servers, nil
}

// Validate checks the configuration for values the node cannot start with.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID cannot be empty")
	}
	if _, _, err := SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}
	if c.ReplicationFactor <= 0 {
		return fmt.Errorf("replication factor must be positive, got %d", c.ReplicationFactor)
	}
	if c.Consul.Register && c.Consul.RegisterName == "" {
		return errors.New("consul registration requires a service name")
	}
	if c.Consul.WaitTime < 0 {
		return fmt.Errorf("consul wait time cannot be negative: %s", c.Consul.WaitTime)
	}
	return nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()

	level := c.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch c.LogFormat {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected text or json)", c.LogFormat)
	}

	return logger, nil
}

// SplitHostPort splits a listen address such as ":50051" or
// "127.0.0.1:50051" into host and numeric port.
func SplitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
