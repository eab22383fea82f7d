package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	consulapi "github.com/hashicorp/consul/api"
)

// Catalog lists the healthy instances of a service. waitIndex enables
// blocking queries: the call may block until the result changes past that
// index. The returned index is passed to the next call.
type Catalog interface {
	Healthy(ctx context.Context, service, tag string, waitIndex uint64) ([]string, uint64, error)
}

// ConsulCatalog is a Catalog backed by the Consul health endpoint.
type ConsulCatalog struct {
	client   *consulapi.Client
	waitTime time.Duration
}

// NewConsulCatalog creates a catalog for the agent at consulAddr. An empty
// address uses the client default (CONSUL_HTTP_ADDR or 127.0.0.1:8500).
func NewConsulCatalog(consulAddr string, waitTime time.Duration) (*ConsulCatalog, error) {
	conf := consulapi.DefaultConfig()
	if consulAddr != "" {
		conf.Address = consulAddr
	}
	c, err := consulapi.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return &ConsulCatalog{
		client:   c,
		waitTime: waitTime,
	}, nil
}

// Healthy returns the passing instances of service as sorted "host:port"
// names.
func (c *ConsulCatalog) Healthy(ctx context.Context, service, tag string, waitIndex uint64) ([]string, uint64, error) {
	q := &consulapi.QueryOptions{
		WaitIndex: waitIndex,
		WaitTime:  c.waitTime,
	}
	entries, meta, err := c.client.Health().Service(service, tag, true, q.WithContext(ctx))
	if err != nil {
		return nil, 0, fmt.Errorf("health query for %s: %w", service, err)
	}
	return instanceNames(entries), meta.LastIndex, nil
}

// Registration describes this process as a Consul service.
type Registration struct {
	ID      string
	Name    string
	Tags    []string
	Address string
	Port    int
}

// Register advertises the service with a gRPC health check against
// Address:Port.
func (c *ConsulCatalog) Register(reg Registration) error {
	checkHost := reg.Address
	if checkHost == "" {
		checkHost = "127.0.0.1"
	}
	check := &consulapi.AgentServiceCheck{
		GRPC:                           net.JoinHostPort(checkHost, strconv.Itoa(reg.Port)),
		Interval:                       "5s",
		Timeout:                        "3s",
		DeregisterCriticalServiceAfter: "1m",
	}
	registration := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Tags:    reg.Tags,
		Port:    reg.Port,
		Address: reg.Address,
		Check:   check,
	}
	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register %s: %w", reg.ID, err)
	}
	return nil
}

// Deregister removes a service previously added with Register.
func (c *ConsulCatalog) Deregister(id string) error {
	if err := c.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", id, err)
	}
	return nil
}

// instanceNames turns health entries into "host:port" names. The service
// address falls back to the node address when unset.
func instanceNames(entries []*consulapi.ServiceEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry == nil || entry.Service == nil {
			continue
		}
		addr := entry.Service.Address
		if addr == "" && entry.Node != nil {
			addr = entry.Node.Address
		}
		names = append(names, net.JoinHostPort(addr, strconv.Itoa(entry.Service.Port)))
	}
	sort.Strings(names)
	return names
}
