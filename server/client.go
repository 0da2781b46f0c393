package server

import (
	"context"
	"fmt"
	"log/slog"

	"trontris/config"
	"trontris/ranking"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a ranking.Store that talks to a ranking server.
type Client struct {
	conn grpc.ClientConnInterface
}

var _ ranking.Store = (*Client)(nil)

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial returns a client for the ranking server at addr. Connecting is lazy,
// an unreachable server shows up as an error on the first call.
func Dial(addr string) (*Client, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ranking client: %w", err)
	}
	return NewClient(conn), conn.Close, nil
}

// OpenStore returns the ranking server client when an address is set,
// otherwise the ranking file in the data dir.
func OpenStore(o *config.Options, l *slog.Logger) (ranking.Store, func() error, error) {
	if o.RankingAddr == "" {
		return ranking.NewFileStore(o.RankingPath(), l), func() error { return nil }, nil
	}
	c, closer, err := Dial(o.RankingAddr)
	if err != nil {
		return nil, nil, err
	}
	l.Info("using remote ranking", slog.String("address", o.RankingAddr))
	return c, closer, nil
}

func (c *Client) Submit(ctx context.Context, name string, score int) ([]ranking.Entry, error) {
	in, err := encodeEntry(ranking.Entry{Name: name, Score: score})
	if err != nil {
		return nil, fmt.Errorf("failed to encode score: %w", err)
	}
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, submitMethod, in, out); err != nil {
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}
	return decodeRanking(out), nil
}

func (c *Client) List(ctx context.Context) ([]ranking.Entry, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, listMethod, &emptypb.Empty{}, out); err != nil {
		return nil, fmt.Errorf("failed to list ranking: %w", err)
	}
	return decodeRanking(out), nil
}
