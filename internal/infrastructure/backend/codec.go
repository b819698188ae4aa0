package backend

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the library backend must speak
// ("application/grpc+json"). A protobuf-only backend needs a proto codec
// registered here instead.
const CodecName = "json"

var wireJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonCodec encodes RPC messages as JSON with snake_case field names.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return wireJSON.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return wireJSON.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
