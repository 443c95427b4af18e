package cv

import "fmt"

// Point 表示二维像素坐标
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// NewPoint 创建新的 Point
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// PointFromTuple 从 [x, y] 数组创建 Point
func PointFromTuple(p [2]int) Point {
	return Point{X: p[0], Y: p[1]}
}

// Add 返回偏移后的坐标
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Rectangle 表示矩形区域（四个角点）
type Rectangle struct {
	TopLeft     Point `json:"top_left"`
	BottomLeft  Point `json:"bottom_left"`
	BottomRight Point `json:"bottom_right"`
	TopRight    Point `json:"top_right"`
}

// NewRectangle 从左上角坐标和宽高创建矩形
func NewRectangle(x, y, w, h int) Rectangle {
	return Rectangle{
		TopLeft:     Point{X: x, Y: y},
		BottomLeft:  Point{X: x, Y: y + h},
		BottomRight: Point{X: x + w, Y: y + h},
		TopRight:    Point{X: x + w, Y: y},
	}
}

// Width 返回矩形宽度
func (r Rectangle) Width() int {
	return r.TopRight.X - r.TopLeft.X
}

// Height 返回矩形高度
func (r Rectangle) Height() int {
	return r.BottomLeft.Y - r.TopLeft.Y
}

// Offset 整体平移矩形
func (r Rectangle) Offset(dx, dy int) Rectangle {
	return Rectangle{
		TopLeft:     r.TopLeft.Add(dx, dy),
		BottomLeft:  r.BottomLeft.Add(dx, dy),
		BottomRight: r.BottomRight.Add(dx, dy),
		TopRight:    r.TopRight.Add(dx, dy),
	}
}

// MatchResult 模板匹配结果
type MatchResult struct {
	// Result 匹配区域中心点（源图像坐标）
	Result Point `json:"result"`
	// Rectangle 匹配区域的四个角点（源图像坐标）
	Rectangle Rectangle `json:"rectangle"`
	// Confidence 归一化互相关分数，范围 [-1, 1]
	Confidence float64 `json:"confidence"`
	// Scale 匹配时使用的降采样比例，1 表示未降采样
	Scale float64 `json:"scale"`
	// Time 匹配耗时（毫秒）
	Time float64 `json:"time,omitempty"`
}

// Offset 将结果平移到父坐标系（用于区域截图）
func (m MatchResult) Offset(dx, dy int) MatchResult {
	m.Result = m.Result.Add(dx, dy)
	m.Rectangle = m.Rectangle.Offset(dx, dy)
	return m
}
