// Package codec 使用 OpenCV 编解码图像文件
package codec

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/zoeyai/screenmatch/pkg/vision/cv/opencv"
)

// ErrDecode 数据不是可识别的图像
var ErrDecode = errors.New("无法解码图像")

// Decode 解码内存中的 PNG/JPEG/BMP 等图像
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: 数据为空", ErrDecode)
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("%w: %d 字节", ErrDecode, len(data))
	}
	return opencv.MatToImage(mat)
}

// LoadFile 读取图像文件
func LoadFile(filename string) (image.Image, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("无法读取图像: %w", err)
	}
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrDecode, filename)
	}
	return opencv.MatToImage(mat)
}

// SaveFile 保存图像文件，格式由扩展名决定
func SaveFile(filename string, img image.Image) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	mat, err := opencv.ImageToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	if ok := gocv.IMWrite(filename, mat); !ok {
		return fmt.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// Encode 编码为指定格式（"png"、".jpg" 等）
func Encode(ext string, img image.Image) ([]byte, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	mat, err := opencv.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.FileExt(strings.ToLower(ext)), mat)
	if err != nil {
		return nil, fmt.Errorf("编码图像失败: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
