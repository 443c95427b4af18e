package auto

import (
	"fmt"
	"image"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// Template 预先提取亮度的模板图像
type Template struct {
	Name string
	gray *image.Gray
}

// NewTemplate 创建模板
func NewTemplate(name string, img image.Image) (*Template, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("模板 %s: %w", name, cv.ErrEmptyImage)
	}
	return &Template{Name: name, gray: cv.ToGray(img)}, nil
}

// Gray 模板亮度图
func (t *Template) Gray() *image.Gray {
	return t.gray
}

// Size 模板尺寸
func (t *Template) Size() (width, height int) {
	b := t.gray.Bounds()
	return b.Dx(), b.Dy()
}

func (t *Template) String() string {
	w, h := t.Size()
	return fmt.Sprintf("Template(%s %dx%d)", t.Name, w, h)
}
