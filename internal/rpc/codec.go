// Package rpc is the wire contract between the eventfeed client and server:
// the request/response messages, the EventService descriptor and a JSON
// codec registered with gRPC under the "json" content subtype.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype both sides use.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOption selects the JSON codec for a client connection.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
