package node

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	ringpb "hashring/internal/gen/api"
	"hashring/internal/ring"
)

// Server implements the Ring gRPC service on top of a single ring.
type Server struct {
	ringpb.UnimplementedRingServer
	ring *ring.Ring
	log  logrus.FieldLogger
}

// NewServer creates a new gRPC server instance.
func NewServer(r *ring.Ring, logger logrus.FieldLogger) *Server {
	return &Server{
		ring: r,
		log:  logger,
	}
}

// MapKey handles MapKey requests.
func (s *Server) MapKey(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	server, err := s.ring.MapKey(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(server), nil
}

// AddServer handles AddServer requests.
func (s *Server) AddServer(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	name := req.GetValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "server name cannot be empty")
	}

	if err := s.ring.AddServer(name); err != nil {
		return nil, toStatus(err)
	}

	s.entry(ctx).WithField("server", name).Info("server added")
	return &emptypb.Empty{}, nil
}

// RemoveServer handles RemoveServer requests. An unknown server is not an
// error; the response reports false.
func (s *Server) RemoveServer(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	name := req.GetValue()
	removed := s.ring.RemoveServer(name)

	entry := s.entry(ctx).WithField("server", name)
	if removed {
		entry.Info("server removed")
	} else {
		entry.Info("server not found")
	}
	return wrapperspb.Bool(removed), nil
}

// AssignKey handles AssignKey requests.
func (s *Server) AssignKey(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	server, err := s.ring.AssignKey(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(server), nil
}

// SetKey handles SetKey requests.
func (s *Server) SetKey(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	key, server, err := setKeyFromProto(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.ring.SetKey(key, server)
	return &emptypb.Empty{}, nil
}

// DeleteKey handles DeleteKey requests. A missing key is not an error; the
// response reports false.
func (s *Server) DeleteKey(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	key := req.GetValue()
	deleted := s.ring.DeleteKey(key)
	if !deleted {
		s.entry(ctx).WithField("key", key).Info("key not found")
	}
	return wrapperspb.Bool(deleted), nil
}

// PreferenceList handles PreferenceList requests.
func (s *Server) PreferenceList(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	key, n, err := preferenceListFromProto(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	servers, err := s.ring.PreferenceList(key, n)
	if err != nil {
		return nil, toStatus(err)
	}
	return stringsToList(servers), nil
}

// Snapshot handles Snapshot requests.
func (s *Server) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := snapshotToProto(s.ring.Snapshot())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return snap, nil
}

func (s *Server) entry(ctx context.Context) logrus.FieldLogger {
	if id := requestIDFromIncoming(ctx); id != "" {
		return s.log.WithField("request_id", id)
	}
	return s.log
}
