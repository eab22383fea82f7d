package node

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"hashring/internal/config"
	ringpb "hashring/internal/gen/api"
)

func TestAdvertiseAddr(t *testing.T) {
	tests := []struct {
		name     string
		listen   string
		bound    net.Addr
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "explicit host",
			listen:   "10.0.0.5:50051",
			bound:    &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 50051},
			wantHost: "10.0.0.5",
			wantPort: 50051,
		},
		{
			name:     "empty host",
			listen:   ":0",
			bound:    &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 41234},
			wantHost: "",
			wantPort: 41234,
		},
		{
			name:     "unspecified IPv4",
			listen:   "0.0.0.0:50051",
			bound:    &net.TCPAddr{IP: net.IPv4zero, Port: 50051},
			wantHost: "",
			wantPort: 50051,
		},
		{
			name:     "unspecified IPv6",
			listen:   "[::]:50051",
			bound:    &net.TCPAddr{IP: net.IPv6unspecified, Port: 50051},
			wantHost: "",
			wantPort: 50051,
		},
		{
			name:    "invalid listen address",
			listen:  "no-port",
			bound:   &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 50051},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := advertiseAddr(tt.listen, tt.bound)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

// agentRecorder fakes the consul agent registration endpoints.
type agentRecorder struct {
	mu           sync.Mutex
	registered   []consulapi.AgentServiceRegistration
	deregistered []string
}

func newAgentRecorder(t *testing.T) (*agentRecorder, *httptest.Server) {
	t.Helper()

	a := &agentRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/agent/service/register", func(w http.ResponseWriter, r *http.Request) {
		var reg consulapi.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.mu.Lock()
		a.registered = append(a.registered, reg)
		a.mu.Unlock()
	})
	mux.HandleFunc("/v1/agent/service/deregister/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.deregistered = append(a.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
		a.mu.Unlock()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return a, srv
}

func (a *agentRecorder) Registered() []consulapi.AgentServiceRegistration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]consulapi.AgentServiceRegistration(nil), a.registered...)
}

func (a *agentRecorder) Deregistered() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.deregistered...)
}

func TestNode_RegistersInConsul(t *testing.T) {
	agent, srv := newAgentRecorder(t)

	logger, _ := logtest.NewNullLogger()
	n, err := NewNode(config.Config{
		NodeID:            "ringd-1",
		ListenAddr:        "127.0.0.1:0",
		ReplicationFactor: 15,
		Consul: config.Consul{
			Addr:         srv.URL,
			Register:     true,
			RegisterName: "ringd",
		},
	}, logger)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port

	serveErr := make(chan error, 1)
	go func() { serveErr <- n.Serve(lis) }()

	require.Eventually(t, func() bool {
		return len(agent.Registered()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{
		Service: ringpb.Ring_ServiceDesc.ServiceName,
	}, grpc.WaitForReady(true))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	reg := agent.Registered()[0]
	assert.Equal(t, "ringd-1", reg.ID)
	assert.Equal(t, "ringd", reg.Name)
	assert.Equal(t, "127.0.0.1", reg.Address)
	assert.Equal(t, port, reg.Port)
	require.NotNil(t, reg.Check)
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), reg.Check.GRPC)

	n.Stop()
	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
	assert.Equal(t, []string{"ringd-1"}, agent.Deregistered())
}

func TestNode_ServeAfterStop(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	n, err := NewNode(config.Config{
		NodeID:            "test-node",
		ListenAddr:        "127.0.0.1:0",
		ReplicationFactor: 15,
	}, logger)
	require.NoError(t, err)

	n.Stop()

	lis := bufconn.Listen(1 << 20)
	defer lis.Close()

	done := make(chan error, 1)
	go func() { done <- n.Serve(lis) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "node stopped")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve started on a stopped node")
	}
}
