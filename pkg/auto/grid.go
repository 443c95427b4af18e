package auto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// ErrInvalidGrid 网格位置字符串无效
var ErrInvalidGrid = errors.New("无效的网格位置")

// GridPosition 把匹配区域等分为 Rows x Cols 个格子，Row/Col 从 1 开始
type GridPosition struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	Row  int `json:"row"`
	Col  int `json:"col"`
}

// ParseGridPosition 解析 "rows.cols.row.col"，如 "2.2.1.1" 为 2x2 网格的左上格
func ParseGridPosition(s string) (GridPosition, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return GridPosition{}, fmt.Errorf("%w: %q (格式 rows.cols.row.col)", ErrInvalidGrid, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return GridPosition{}, fmt.Errorf("%w: %q 第 %d 段 %q 不是正整数", ErrInvalidGrid, s, i+1, p)
		}
		v[i] = n
	}

	g := GridPosition{Rows: v[0], Cols: v[1], Row: v[2], Col: v[3]}
	if g.Row > g.Rows || g.Col > g.Cols {
		return GridPosition{}, fmt.Errorf("%w: %q 目标格 (%d, %d) 超出 %dx%d 网格",
			ErrInvalidGrid, s, g.Row, g.Col, g.Rows, g.Cols)
	}
	return g, nil
}

func (g GridPosition) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.Rows, g.Cols, g.Row, g.Col)
}

// Center 格子在 r 中的中心点，坐标向下取整
func (g GridPosition) Center(r Region) cv.Point {
	cw := float64(r.Width) / float64(g.Cols)
	ch := float64(r.Height) / float64(g.Rows)
	return cv.Point{
		X: int(float64(r.X) + (float64(g.Col)-0.5)*cw),
		Y: int(float64(r.Y) + (float64(g.Row)-0.5)*ch),
	}
}

// Cell 格子在 r 中覆盖的区域，相邻格子不重叠且拼满 r
func (g GridPosition) Cell(r Region) Region {
	x0 := r.X + (g.Col-1)*r.Width/g.Cols
	x1 := r.X + g.Col*r.Width/g.Cols
	y0 := r.Y + (g.Row-1)*r.Height/g.Rows
	y1 := r.Y + g.Row*r.Height/g.Rows
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// GridPoint 返回 r 中 gridStr 指定格子的中心，gridStr 为空时返回 r 的中心
func GridPoint(r Region, gridStr string) (cv.Point, error) {
	if gridStr == "" {
		return r.Center(), nil
	}
	g, err := ParseGridPosition(gridStr)
	if err != nil {
		return cv.Point{}, err
	}
	return g.Center(r), nil
}
