package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"hashring/internal/ring"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{err: ring.ErrEmptyRing, code: codes.FailedPrecondition},
		{err: ring.ErrServerExists, code: codes.AlreadyExists},
		{err: ring.ErrRingFull, code: codes.ResourceExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			st := toStatus(tt.err)
			assert.Equal(t, tt.code, status.Code(st))
			assert.True(t, errors.Is(fromStatus(st), tt.err))
		})
	}

	assert.Equal(t, codes.Internal, status.Code(toStatus(errors.New("boom"))))
	assert.NoError(t, fromStatus(nil))

	other := status.Error(codes.Unavailable, "down")
	assert.Equal(t, other, fromStatus(other))
}

func TestSnapshotRoundTrip(t *testing.T) {
	r, err := ring.New(15)
	require.NoError(t, err)
	for _, s := range []string{"Server1", "Server2"} {
		require.NoError(t, r.AddServer(s))
	}
	r.SetKey("k1", "Server1")
	r.SetKey("k2", "gone")

	want := r.Snapshot()
	pb, err := snapshotToProto(want)
	require.NoError(t, err)

	got, err := snapshotFromProto(pb)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotFromProto_Invalid(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{
		"positions": map[string]any{"not-a-number": "a"},
	})
	require.NoError(t, err)
	_, err = snapshotFromProto(st)
	assert.Error(t, err)

	st, err = structpb.NewStruct(map[string]any{
		"sorted_positions": []any{5, 3},
	})
	require.NoError(t, err)
	_, err = snapshotFromProto(st)
	assert.Error(t, err)
}

func TestPreferenceListFromProto(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantKey string
		wantN   int
		wantErr bool
	}{
		{name: "valid", fields: map[string]any{"key": "k", "n": 3}, wantKey: "k", wantN: 3},
		{name: "zero", fields: map[string]any{"key": "k", "n": 0}, wantKey: "k", wantN: 0},
		{name: "missing key", fields: map[string]any{"n": 3}, wantErr: true},
		{name: "missing n", fields: map[string]any{"key": "k"}, wantErr: true},
		{name: "negative", fields: map[string]any{"key": "k", "n": -1}, wantErr: true},
		{name: "fractional", fields: map[string]any{"key": "k", "n": 1.5}, wantErr: true},
		{name: "string n", fields: map[string]any{"key": "k", "n": "3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			key, n, err := preferenceListFromProto(st)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestSetKeyFromProto(t *testing.T) {
	key, server, err := setKeyFromProto(setKeyToProto("k", "s"))
	require.NoError(t, err)
	assert.Equal(t, "k", key)
	assert.Equal(t, "s", server)

	// An empty key is a valid key.
	key, _, err = setKeyFromProto(setKeyToProto("", "s"))
	require.NoError(t, err)
	assert.Equal(t, "", key)

	_, _, err = setKeyFromProto(&structpb.Struct{})
	assert.Error(t, err)

	st, err := structpb.NewStruct(map[string]any{"key": 1, "server": "s"})
	require.NoError(t, err)
	_, _, err = setKeyFromProto(st)
	assert.Error(t, err)
}
