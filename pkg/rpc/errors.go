package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision"
	"github.com/zoeyai/screenmatch/pkg/vision/codec"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// toStatus 将内部错误映射为 gRPC 状态码
// 设备错误先于解码错误判断：截图解码失败属于设备问题，而非请求参数问题
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	var (
		sizeErr *cv.ImageSizeError
		pixErr  *cv.PixelBufferError
		invErr  *device.InvocationError
		execErr *device.ExecutionError
		decErr  *device.DecodeError
		capErr  *device.CaptureError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.As(err, &invErr), errors.As(err, &execErr),
		errors.As(err, &decErr), errors.As(err, &capErr):
		return codes.Unavailable
	case errors.Is(err, cv.ErrEmptyImage), errors.Is(err, cv.ErrInvalidSizeThreshold),
		errors.As(err, &sizeErr), errors.As(err, &pixErr),
		errors.Is(err, codec.ErrDecode), errors.Is(err, vision.ErrUnknownBackend):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}
