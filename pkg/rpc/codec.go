package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName 请求使用的 content-subtype
const codecName = "json"

// jsonCodec 以 JSON 作为 gRPC 消息编码
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
