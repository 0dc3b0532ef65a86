package semantic

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CodecEmbedMethod is the full gRPC method name of the embedding RPC. The
// request is a StringValue holding the text; the reply is a ListValue of
// numbers.
const CodecEmbedMethod = "/chatpls.codec.v1.CodecService/Embed"

// CodecEmbedder gets embeddings from the inference service over gRPC.
type CodecEmbedder struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// NewCodecEmbedder connects to the inference service. The connection is lazy;
// nothing is dialed until the first Embed.
func NewCodecEmbedder(addr string) (*CodecEmbedder, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecEmbedder{conn: conn, cc: conn}, nil
}

// NewCodecEmbedderWithConn uses an existing connection. Used for testing
// without a real server.
func NewCodecEmbedderWithConn(cc grpc.ClientConnInterface) *CodecEmbedder {
	return &CodecEmbedder{cc: cc}
}

// Close shuts down the connection if this embedder owns it.
func (c *CodecEmbedder) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Embed implements Embedder.
func (c *CodecEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reply := &structpb.ListValue{}
	if err := c.cc.Invoke(ctx, CodecEmbedMethod, wrapperspb.String(text), reply); err != nil {
		return nil, fmt.Errorf("embed rpc: %w", err)
	}
	if len(reply.Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	vec := make([]float32, len(reply.Values))
	for i, v := range reply.Values {
		n, ok := v.Kind.(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("embedding element %d is not a number", i)
		}
		vec[i] = float32(n.NumberValue)
	}
	return vec, nil
}
