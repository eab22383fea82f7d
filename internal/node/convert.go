package node

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"hashring/internal/ring"
)

// toStatus maps ring errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ring.ErrEmptyRing):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ring.ErrServerExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ring.ErrRingFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStatus maps a gRPC status back onto the ring's sentinel errors so
// remote callers can use errors.Is like local ones.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.FailedPrecondition:
		return fmt.Errorf("%w (remote: %s)", ring.ErrEmptyRing, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w (remote: %s)", ring.ErrServerExists, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w (remote: %s)", ring.ErrRingFull, st.Message())
	default:
		return err
	}
}

func setKeyToProto(key, server string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"key":    structpb.NewStringValue(key),
		"server": structpb.NewStringValue(server),
	}}
}

func setKeyFromProto(req *structpb.Struct) (string, string, error) {
	fields := req.GetFields()
	keyVal, ok := fields["key"]
	if !ok {
		return "", "", errors.New("missing field: key")
	}
	if _, isString := keyVal.GetKind().(*structpb.Value_StringValue); !isString {
		return "", "", errors.New("field key must be a string")
	}
	server := fields["server"].GetStringValue()
	if server == "" {
		return "", "", errors.New("server name cannot be empty")
	}
	return keyVal.GetStringValue(), server, nil
}

func preferenceListToProto(key string, n int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"key": structpb.NewStringValue(key),
		"n":   structpb.NewNumberValue(float64(n)),
	}}
}

func preferenceListFromProto(req *structpb.Struct) (string, int, error) {
	fields := req.GetFields()
	keyVal, ok := fields["key"]
	if !ok {
		return "", 0, errors.New("missing field: key")
	}
	nVal, ok := fields["n"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return "", 0, errors.New("field n must be a number")
	}
	n := nVal.NumberValue
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return "", 0, fmt.Errorf("field n must be a non-negative integer, got %v", n)
	}
	return keyVal.GetStringValue(), int(n), nil
}

func stringsToList(values []string) *structpb.ListValue {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(values))}
	for _, v := range values {
		list.Values = append(list.Values, structpb.NewStringValue(v))
	}
	return list
}

func listToStrings(list *structpb.ListValue) []string {
	values := make([]string, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		values = append(values, v.GetStringValue())
	}
	return values
}

// snapshotToProto encodes a ring snapshot. Positions become decimal string
// keys since Struct keys are strings.
func snapshotToProto(snap ring.Snapshot) (*structpb.Struct, error) {
	servers := make([]any, 0, len(snap.Servers))
	for _, s := range snap.Servers {
		servers = append(servers, s)
	}
	positions := make(map[string]any, len(snap.Positions))
	for pos, server := range snap.Positions {
		positions[strconv.FormatUint(pos, 10)] = server
	}
	sorted := make([]any, 0, len(snap.SortedPositions))
	for _, pos := range snap.SortedPositions {
		sorted = append(sorted, pos)
	}
	assignments := make(map[string]any, len(snap.Assignments))
	for key, server := range snap.Assignments {
		assignments[key] = server
	}
	load := make(map[string]any, len(snap.Load))
	for server, count := range snap.Load {
		load[server] = count
	}

	return structpb.NewStruct(map[string]any{
		"replication_factor": snap.ReplicationFactor,
		"servers":            servers,
		"positions":          positions,
		"sorted_positions":   sorted,
		"assignments":        assignments,
		"load":               load,
	})
}

// snapshotFromProto decodes the output of snapshotToProto.
func snapshotFromProto(st *structpb.Struct) (ring.Snapshot, error) {
	fields := st.GetFields()
	snap := ring.Snapshot{
		ReplicationFactor: int(fields["replication_factor"].GetNumberValue()),
		Servers:           listToStrings(fields["servers"].GetListValue()),
		Positions:         make(map[uint64]string),
		SortedPositions:   make([]uint64, 0),
		Assignments:       make(map[string]string),
		Load:              make(map[string]int),
	}

	for posStr, v := range fields["positions"].GetStructValue().GetFields() {
		pos, err := strconv.ParseUint(posStr, 10, 64)
		if err != nil {
			return ring.Snapshot{}, fmt.Errorf("invalid position %q: %w", posStr, err)
		}
		snap.Positions[pos] = v.GetStringValue()
	}
	for _, v := range fields["sorted_positions"].GetListValue().GetValues() {
		snap.SortedPositions = append(snap.SortedPositions, uint64(v.GetNumberValue()))
	}
	if !sort.SliceIsSorted(snap.SortedPositions, func(i, j int) bool {
		return snap.SortedPositions[i] < snap.SortedPositions[j]
	}) {
		return ring.Snapshot{}, errors.New("sorted positions out of order")
	}
	for key, v := range fields["assignments"].GetStructValue().GetFields() {
		snap.Assignments[key] = v.GetStringValue()
	}
	for server, v := range fields["load"].GetStructValue().GetFields() {
		snap.Load[server] = int(v.GetNumberValue())
	}

	return snap, nil
}
