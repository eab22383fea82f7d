package node

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// requestIDMetadataKey carries a per-call request ID from clients to the
// server's logs.
const requestIDMetadataKey = "x-request-id"

// WithRequestID attaches id to outgoing calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, requestIDMetadataKey, id)
}

func requestIDFromIncoming(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if ids := md.Get(requestIDMetadataKey); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// requestIDInterceptor stamps calls that carry no request ID with a new one.
func requestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		md, ok := metadata.FromOutgoingContext(ctx)
		if !ok || len(md.Get(requestIDMetadataKey)) == 0 {
			ctx = WithRequestID(ctx, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// loggingInterceptor logs every unary call with its method, request ID and
// duration. Failed calls are logged at warn level.
func loggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := logger.WithFields(logrus.Fields{
			"method":   path.Base(info.FullMethod),
			"duration": time.Since(start),
		})
		if id := requestIDFromIncoming(ctx); id != "" {
			entry = entry.WithField("request_id", id)
		}
		if err != nil {
			entry.WithField("code", status.Code(err)).WithError(err).Warn("request failed")
		} else {
			entry.Debug("request served")
		}
		return resp, err
	}
}
