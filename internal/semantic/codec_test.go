package semantic

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region mock
type mockConn struct {
	grpc.ClientConnInterface

	method string
	text   string
	resp   *structpb.ListValue
	err    error
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.method = method
	m.text = args.(*wrapperspb.StringValue).GetValue()
	if m.err != nil {
		return m.err
	}
	proto.Merge(reply.(proto.Message), m.resp)
	return nil
}

// #endregion mock

func TestNewCodecEmbedderLazy(t *testing.T) {
	e, err := NewCodecEmbedder("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating embedder: %v", err)
	}
	defer e.Close()
}

func TestCodecEmbed_Success(t *testing.T) {
	list, _ := structpb.NewList([]any{0.25, -0.5, 1.0})
	mock := &mockConn{resp: list}

	vec, err := NewCodecEmbedderWithConn(mock).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if mock.method != CodecEmbedMethod || mock.text != "hello" {
		t.Errorf("call = %s(%q)", mock.method, mock.text)
	}
	if len(vec) != 3 || vec[0] != 0.25 || vec[1] != -0.5 {
		t.Fatalf("vec = %v", vec)
	}
}

func TestCodecEmbed_Errors(t *testing.T) {
	boom := errors.New("unavailable")
	if _, err := NewCodecEmbedderWithConn(&mockConn{err: boom}).Embed(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped rpc error, got %v", err)
	}

	if _, err := NewCodecEmbedderWithConn(&mockConn{resp: &structpb.ListValue{}}).Embed(context.Background(), "x"); err == nil {
		t.Error("expected error for empty embedding")
	}

	mixed, _ := structpb.NewList([]any{0.1, "nope"})
	if _, err := NewCodecEmbedderWithConn(&mockConn{resp: mixed}).Embed(context.Background(), "x"); err == nil {
		t.Error("expected error for non-numeric element")
	}
}

func TestCodecEmbed_Bufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "chatpls.codec.v1.CodecService",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Embed",
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				in := &wrapperspb.StringValue{}
				if err := dec(in); err != nil {
					return nil, err
				}
				return structpb.NewList([]any{float64(len(in.GetValue())), 1})
			},
		}},
	}, struct{}{})
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	vec, err := NewCodecEmbedderWithConn(conn).Embed(context.Background(), "four")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 4 || vec[1] != 1 {
		t.Fatalf("vec = %v", vec)
	}
}
