package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"hashring/internal/config"
	ringpb "hashring/internal/gen/api"
	"hashring/internal/ring"
)

const bufTarget = "passthrough:///bufnet"

type testNode struct {
	node *Node
	lis  *bufconn.Listener
	hook *logtest.Hook
}

func (tn *testNode) dialer() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return tn.lis.DialContext(ctx)
	})
}

// conn opens a raw connection for calls the typed client does not cover.
func (tn *testNode) conn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(bufTarget,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		tn.dialer(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func startTestNode(t *testing.T, servers ...string) (*testNode, *Client) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	n, err := NewNode(config.Config{
		NodeID:            "test-node",
		ListenAddr:        "127.0.0.1:0",
		ReplicationFactor: 15,
		Servers:           servers,
	}, logger)
	require.NoError(t, err)

	tn := &testNode{node: n, lis: bufconn.Listen(1 << 20), hook: hook}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- n.Serve(tn.lis)
	}()

	cm := NewClientManager(tn.dialer())
	client, err := cm.GetClient(bufTarget)
	require.NoError(t, err)

	t.Cleanup(func() {
		cm.Close()
		n.Stop()
		select {
		case err := <-serveErr:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after Stop")
		}
	})
	return tn, client
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestServer_GoldenScenario(t *testing.T) {
	_, client := startTestNode(t, "Server1", "Server2", "Server3", "Server4")
	ctx := testContext(t)

	server, err := client.AssignKey(ctx, "key2222")
	require.NoError(t, err)
	assert.Equal(t, "Server4", server)

	server, err = client.MapKey(ctx, "key22")
	require.NoError(t, err)
	assert.Equal(t, "Server1", server)
}

func TestServer_EmptyRing(t *testing.T) {
	tn, client := startTestNode(t)
	ctx := testContext(t)

	_, err := client.MapKey(ctx, "key")
	assert.True(t, errors.Is(err, ring.ErrEmptyRing), "got %v", err)

	_, err = client.AssignKey(ctx, "key")
	assert.True(t, errors.Is(err, ring.ErrEmptyRing), "got %v", err)

	_, err = client.PreferenceList(ctx, "key", 2)
	assert.True(t, errors.Is(err, ring.ErrEmptyRing), "got %v", err)

	raw := ringpb.NewRingClient(tn.conn(t))
	_, err = raw.MapKey(ctx, wrapperspb.String("key"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServer_AddRemoveServer(t *testing.T) {
	tn, client := startTestNode(t, "Server1")
	ctx := testContext(t)

	require.NoError(t, client.AddServer(ctx, "Server2"))
	assert.Equal(t, []string{"Server1", "Server2"}, tn.node.Ring().Servers())

	err := client.AddServer(ctx, "Server2")
	assert.True(t, errors.Is(err, ring.ErrServerExists), "got %v", err)

	err = client.AddServer(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	removed, err := client.RemoveServer(ctx, "Server1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = client.RemoveServer(ctx, "Server1")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []string{"Server2"}, tn.node.Ring().Servers())
}

func TestServer_Keys(t *testing.T) {
	tn, client := startTestNode(t, "Server1", "Server2", "Server3")
	ctx := testContext(t)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("key-%d", i)
		assigned, err := client.AssignKey(ctx, key)
		require.NoError(t, err)
		mapped, err := client.MapKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, mapped, assigned)
	}

	require.NoError(t, client.SetKey(ctx, "pinned", "elsewhere"))
	assert.Equal(t, "elsewhere", tn.node.Ring().Assignments()["pinned"])

	deleted, err := client.DeleteKey(ctx, "pinned")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = client.DeleteKey(ctx, "pinned")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Len(t, tn.node.Ring().Assignments(), 20)
}

func TestServer_SetKey_InvalidArgument(t *testing.T) {
	tn, _ := startTestNode(t, "Server1")
	ctx := testContext(t)
	raw := ringpb.NewRingClient(tn.conn(t))

	_, err := raw.SetKey(ctx, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = raw.SetKey(ctx, setKeyToProto("k", ""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_PreferenceList(t *testing.T) {
	_, client := startTestNode(t, "node1", "node2", "node3")
	ctx := testContext(t)

	prefs, err := client.PreferenceList(ctx, "test-key", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"node1", "node2", "node3"}, prefs)

	owner, err := client.MapKey(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, owner, prefs[0])

	_, err = client.PreferenceList(ctx, "test-key", -1)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_Snapshot(t *testing.T) {
	tn, client := startTestNode(t, "Server1", "Server2", "Server3", "Server4")
	ctx := testContext(t)

	_, err := client.AssignKey(ctx, "key2222")
	require.NoError(t, err)

	snap, err := client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, tn.node.Ring().Snapshot(), snap)
}

func TestServer_LogsSoftSignalsWithRequestID(t *testing.T) {
	tn, client := startTestNode(t, "Server1")
	ctx := WithRequestID(testContext(t), "req-42")

	removed, err := client.RemoveServer(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, removed)

	var found *logrus.Entry
	for _, entry := range tn.hook.AllEntries() {
		if entry.Message == "server not found" {
			found = entry
		}
	}
	require.NotNil(t, found, "expected soft signal to be logged")
	assert.Equal(t, "ghost", found.Data["server"])
	assert.Equal(t, "req-42", found.Data["request_id"])
	assert.Equal(t, "test-node", found.Data["node"])
}

func TestServer_Health(t *testing.T) {
	tn, _ := startTestNode(t)
	ctx := testContext(t)

	resp, err := healthpb.NewHealthClient(tn.conn(t)).Check(ctx, &healthpb.HealthCheckRequest{
		Service: ringpb.Ring_ServiceDesc.ServiceName,
	})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestNewNode_InvalidConfig(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	_, err := NewNode(config.Config{NodeID: "n", ListenAddr: ":0"}, logger)
	assert.Error(t, err, "zero replication factor")

	_, err = NewNode(config.Config{
		NodeID:            "n",
		ListenAddr:        ":0",
		ReplicationFactor: 15,
		Servers:           []string{"a", "a"},
	}, logger)
	assert.True(t, errors.Is(err, ring.ErrServerExists), "got %v", err)
}
