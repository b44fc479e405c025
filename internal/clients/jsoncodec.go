package clients

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered as a grpc content-subtype so callers can dial
// with grpc.CallContentSubtype(jsonCodecName). Wire-level RPC framing to
// nodes and clusters is out of scope (spec.md §1); this codec lets the
// reconciler exercise a real *grpc.ClientConn/*grpc.Server transport
// without protoc-generated message types.
const jsonCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
