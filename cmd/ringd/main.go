// Command ringd serves a consistent hashing ring over gRPC.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hashring/internal/config"
	"hashring/internal/node"
)

func main() {
	var (
		nodeID    = flag.String("node-id", "ringd", "node identifier, also the consul registration ID")
		listen    = flag.String("listen", ":50051", "gRPC listen address")
		rf        = flag.Int("replication-factor", config.DefaultReplicationFactor, "virtual nodes per server")
		servers   = flag.String("servers", "", "initial servers: name1,name2,...")
		logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFormat = flag.String("log-format", "text", "log format (text or json)")

		consulAddr     = flag.String("consul-addr", "", "consul agent address (default from CONSUL_HTTP_ADDR)")
		consulService  = flag.String("consul-service", "", "sync ring servers from the healthy instances of this consul service")
		consulTag      = flag.String("consul-tag", "", "only sync instances with this tag")
		consulRegister = flag.String("consul-register", "", "register this node in consul under the given service name")
		consulWait     = flag.Duration("consul-wait", config.DefaultConsulWait, "maximum blocking query duration")
	)
	flag.Parse()

	serverList, err := config.ParseServers(*servers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --servers: %v\n", err)
		os.Exit(2)
	}

	cfg := config.Config{
		NodeID:            *nodeID,
		ListenAddr:        *listen,
		ReplicationFactor: *rf,
		Servers:           serverList,
		LogLevel:          *logLevel,
		LogFormat:         *logFormat,
		Consul: config.Consul{
			Addr:         *consulAddr,
			Service:      *consulService,
			Tag:          *consulTag,
			Register:     *consulRegister != "",
			RegisterName: *consulRegister,
			WaitTime:     *consulWait,
		},
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	n, err := node.NewNode(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create node")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("shutting down")
		n.Stop()
	}()

	if err := n.Start(); err != nil {
		logger.WithError(err).Fatal("node stopped")
	}
}
