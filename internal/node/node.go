package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"hashring/internal/config"
	"hashring/internal/discovery"
	ringpb "hashring/internal/gen/api"
	"hashring/internal/ring"
)

// Node owns one ring and serves it over gRPC.
type Node struct {
	cfg  config.Config
	ring *ring.Ring
	log  logrus.FieldLogger

	catalog *discovery.ConsulCatalog
	syncer  *discovery.Syncer

	mu         sync.Mutex
	grpcServer *grpc.Server
	health     *health.Server
	cancel     context.CancelFunc
	registered bool
	stopped    bool
	syncDone   chan struct{}
}

// NewNode creates a node from cfg and seeds its ring with cfg.Servers.
func NewNode(cfg config.Config, logger logrus.FieldLogger) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rng, err := ring.New(cfg.ReplicationFactor)
	if err != nil {
		return nil, err
	}
	for _, server := range cfg.Servers {
		if err := rng.AddServer(server); err != nil {
			return nil, fmt.Errorf("failed to add server %s: %w", server, err)
		}
	}

	n := &Node{
		cfg:  cfg,
		ring: rng,
		log:  logger.WithField("node", cfg.NodeID),
	}

	if cfg.Consul.Service != "" || cfg.Consul.Register {
		waitTime := cfg.Consul.WaitTime
		if waitTime == 0 {
			waitTime = config.DefaultConsulWait
		}
		catalog, err := discovery.NewConsulCatalog(cfg.Consul.Addr, waitTime)
		if err != nil {
			return nil, err
		}
		n.catalog = catalog
		if cfg.Consul.Service != "" {
			n.syncer = discovery.NewSyncer(catalog, rng, cfg.Consul.Service, cfg.Consul.Tag, n.log)
		}
	}

	return n, nil
}

// Ring returns the ring served by this node.
func (n *Node) Ring() *ring.Ring {
	return n.ring
}

// Start listens on the configured address and serves until Stop.
func (n *Node) Start() error {
	lis, err := net.Listen("tcp", n.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.cfg.ListenAddr, err)
	}
	return n.Serve(lis)
}

// Serve serves on lis until Stop. It starts the discovery syncer and the
// consul registration when configured.
func (n *Node) Serve(lis net.Listener) error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return errors.New("node stopped")
	}
	if n.grpcServer != nil {
		n.mu.Unlock()
		return errors.New("node already serving")
	}

	n.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(n.log)))
	ringpb.RegisterRingServer(n.grpcServer, NewServer(n.ring, n.log))

	n.health = health.NewServer()
	healthpb.RegisterHealthServer(n.grpcServer, n.health)
	n.health.SetServingStatus(ringpb.Ring_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	if n.syncer != nil {
		n.syncDone = make(chan struct{})
		go n.runSyncer(ctx)
	}
	if n.cfg.Consul.Register {
		if err := n.register(lis.Addr()); err != nil {
			// Serving still works without the registration.
			n.log.WithError(err).Warn("consul registration failed")
		}
	}
	grpcServer := n.grpcServer
	n.mu.Unlock()

	n.log.WithFields(logrus.Fields{
		"addr":               lis.Addr().String(),
		"replication_factor": n.ring.ReplicationFactor(),
		"servers":            len(n.ring.Servers()),
	}).Info("starting node")

	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the node. A stopped node cannot serve again.
func (n *Node) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopped = true

	if n.cancel != nil {
		n.cancel()
		if n.syncDone != nil {
			<-n.syncDone
		}
	}
	if n.registered {
		if err := n.catalog.Deregister(n.cfg.NodeID); err != nil {
			n.log.WithError(err).Warn("consul deregistration failed")
		}
		n.registered = false
	}
	if n.health != nil {
		n.health.Shutdown()
	}
	if n.grpcServer != nil {
		n.log.Info("stopping node")
		n.grpcServer.GracefulStop()
	}
}

func (n *Node) runSyncer(ctx context.Context) {
	defer close(n.syncDone)
	n.log.WithField("service", n.cfg.Consul.Service).Info("started consul membership sync")
	if err := n.syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		n.log.WithError(err).Error("consul membership sync stopped")
	}
}

// register advertises this node in consul. Callers must hold n.mu.
func (n *Node) register(addr net.Addr) error {
	host, port, err := advertiseAddr(n.cfg.ListenAddr, addr)
	if err != nil {
		return err
	}

	err = n.catalog.Register(discovery.Registration{
		ID:      n.cfg.NodeID,
		Name:    n.cfg.Consul.RegisterName,
		Address: host,
		Port:    port,
	})
	if err != nil {
		return err
	}
	n.registered = true
	n.log.WithField("service", n.cfg.Consul.RegisterName).Info("registered in consul")
	return nil
}

// advertiseAddr derives the address registered in consul. The host comes
// from the configured listen address and is left empty when unspecified,
// so consul falls back to the agent's node address. The port comes from
// the bound listener, which resolves ":0".
func advertiseAddr(listenAddr string, bound net.Addr) (string, int, error) {
	host, _, err := config.SplitHostPort(listenAddr)
	if err != nil {
		return "", 0, err
	}
	_, port, err := config.SplitHostPort(bound.String())
	if err != nil {
		return "", 0, err
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = ""
	}
	return host, port, nil
}
