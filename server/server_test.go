package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math"
	"net"
	"path/filepath"
	"testing"

	"trontris/config"
	"trontris/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRankingService(t *testing.T) {
	ctx := context.Background()
	store := ranking.NewFileStore(filepath.Join(t.TempDir(), "ranking.yaml"), nil)
	client, conn, closer := testServer(store)
	defer closer()

	list, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = client.Submit(ctx, "Ana", 100)
	require.NoError(t, err)
	list, err = client.Submit(ctx, "Bruno", 1200)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bruno", list[0].Name)
	assert.Equal(t, 1200, list[0].Score)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "Ana", list[1].Name)

	list, err = client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	t.Run("negative score is rejected", func(t *testing.T) {
		_, err := client.Submit(ctx, "Ana", -1)
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
	})

	t.Run("missing score is rejected", func(t *testing.T) {
		in, err := structpb.NewStruct(map[string]any{"name": "Ana"})
		require.NoError(t, err)
		err = conn.Invoke(ctx, submitMethod, in, new(structpb.ListValue))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("scores that aren't whole numbers are rejected", func(t *testing.T) {
		for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 40.5, 1 << 60} {
			in, err := structpb.NewStruct(map[string]any{"name": "Ana", "score": score})
			require.NoError(t, err)
			err = conn.Invoke(ctx, submitMethod, in, new(structpb.ListValue))
			assert.Equal(t, codes.InvalidArgument, status.Code(err), "score %v", score)
		}
		list, err := client.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("long names are cut", func(t *testing.T) {
		list, err := client.Submit(ctx, "abcdefghijklmnopqrstuvwxyz0123456789", 5000)
		require.NoError(t, err)
		assert.Len(t, []rune(list[0].Name), maxNameLength)
	})
}

type failingStore struct{}

func (failingStore) Submit(context.Context, string, int) ([]ranking.Entry, error) {
	return nil, errors.New("disk full")
}
func (failingStore) List(context.Context) ([]ranking.Entry, error) {
	return nil, errors.New("disk full")
}

func TestRankingServiceStoreErrors(t *testing.T) {
	ctx := context.Background()
	client, _, closer := testServer(failingStore{})
	defer closer()

	_, err := client.Submit(ctx, "Ana", 40)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
	_, err = client.List(ctx)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
}

func TestDecodeRanking(t *testing.T) {
	good, err := encodeEntry(ranking.Entry{ID: "1", Name: "Ana", Score: 40})
	require.NoError(t, err)
	l := &structpb.ListValue{Values: []*structpb.Value{
		structpb.NewStringValue("garbage"),
		structpb.NewStructValue(good),
		structpb.NewStructValue(&structpb.Struct{}),
		structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name":  structpb.NewStringValue("Bruno"),
			"score": structpb.NewNumberValue(math.NaN()),
		}}),
	}}
	assert.Equal(t, []ranking.Entry{{ID: "1", Name: "Ana", Score: 40}}, decodeRanking(l))
}

func testServer(store ranking.Store) (*Client, *grpc.ClientConn, func()) {
	buffer := 1024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	Register(s, New(store, nil))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Printf("error connecting to server: %v", err)
	}

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}

	return NewClient(conn), conn, closer
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	store, closer, err := OpenStore(&config.Options{DataDir: dir}, slog.Default())
	require.NoError(t, err)
	defer closer() //nolint:errcheck
	_, ok := store.(*ranking.FileStore)
	assert.True(t, ok, "wanted the file store without a ranking address")

	store, closer, err = OpenStore(&config.Options{DataDir: dir, RankingAddr: "localhost:9000"}, slog.Default())
	require.NoError(t, err)
	defer closer() //nolint:errcheck
	_, ok = store.(*Client)
	assert.True(t, ok, "wanted the gRPC client with a ranking address")
}
