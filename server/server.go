// Package server exposes a ranking.Store over gRPC and provides the
// matching client.
//
// The service has no generated code: messages are protobuf well-known types.
// An entry travels as a Struct {"id", "name", "score"}, a ranking as a
// ListValue of such structs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"trontris/ranking"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName  = "trontris.Ranking"
	submitMethod = "/" + serviceName + "/Submit"
	listMethod   = "/" + serviceName + "/List"
)

// RankingServer is the server API of the ranking service.
type RankingServer interface {
	Submit(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RankingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
		{MethodName: "List", Handler: listHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trontris/ranking",
}

// Register adds the ranking service to a gRPC server.
func Register(s grpc.ServiceRegistrar, srv RankingServer) {
	s.RegisterService(&serviceDesc, srv)
}

func submitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankingServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RankingServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankingServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RankingServer).List(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

const (
	maxNameLength = 32
	// maxScore is the largest integer a NumberValue holds exactly.
	maxScore = 1 << 53
)

type rankingServer struct {
	store  ranking.Store
	logger *slog.Logger
}

// New returns a RankingServer backed by the store.
func New(store ranking.Store, l *slog.Logger) RankingServer {
	if l == nil {
		l = slog.Default()
	}
	return &rankingServer{store: store, logger: l}
}

func (r *rankingServer) Submit(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	e, err := decodeEntry(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if e.Score < 0 {
		return nil, status.Error(codes.InvalidArgument, "score must not be negative")
	}
	name := strings.TrimSpace(e.Name)
	if len([]rune(name)) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	list, err := r.store.Submit(ctx, name, e.Score)
	if err != nil {
		r.logger.Error("unable to store score", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "unable to store score")
	}
	r.logger.Info("score submitted", slog.String("name", name), slog.Int("score", e.Score))
	return encodeRanking(list)
}

func (r *rankingServer) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := r.store.List(ctx)
	if err != nil {
		r.logger.Error("unable to list ranking", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "unable to list ranking")
	}
	return encodeRanking(list)
}

func encodeEntry(e ranking.Entry) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":    e.ID,
		"name":  e.Name,
		"score": e.Score,
	})
}

func decodeEntry(s *structpb.Struct) (ranking.Entry, error) {
	f := s.GetFields()
	score, ok := f["score"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return ranking.Entry{}, errors.New("score is required")
	}
	v := score.NumberValue
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > maxScore {
		return ranking.Entry{}, errors.New("score must be a whole number")
	}
	return ranking.Entry{
		ID:    f["id"].GetStringValue(),
		Name:  f["name"].GetStringValue(),
		Score: int(v),
	}, nil
}

func encodeRanking(list []ranking.Entry) (*structpb.ListValue, error) {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(list))}
	for _, e := range list {
		s, err := encodeEntry(e)
		if err != nil {
			return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode entry: %v", err))
		}
		out.Values = append(out.Values, structpb.NewStructValue(s))
	}
	return out, nil
}

// decodeRanking ignores malformed entries.
func decodeRanking(l *structpb.ListValue) []ranking.Entry {
	list := make([]ranking.Entry, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			continue
		}
		e, err := decodeEntry(s)
		if err != nil {
			continue
		}
		list = append(list, e)
	}
	return list
}
