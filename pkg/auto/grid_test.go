package auto

import (
	"errors"
	"image"
	"testing"

	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

func TestParseGridPosition(t *testing.T) {
	tests := []struct {
		input   string
		want    GridPosition
		wantErr bool
	}{
		{"2.2.1.1", GridPosition{Rows: 2, Cols: 2, Row: 1, Col: 1}, false},
		{"3.3.2.2", GridPosition{Rows: 3, Cols: 3, Row: 2, Col: 2}, false},
		{"4.2.3.1", GridPosition{Rows: 4, Cols: 2, Row: 3, Col: 1}, false},
		{"1.1.1.1", GridPosition{Rows: 1, Cols: 1, Row: 1, Col: 1}, false},
		{"", GridPosition{}, true},
		{"2.2.1", GridPosition{}, true},
		{"2.2.1.1.1", GridPosition{}, true},
		{"a.2.1.1", GridPosition{}, true},
		{"0.2.1.1", GridPosition{}, true},
		{"2.2.0.1", GridPosition{}, true},
		{"2.2.3.1", GridPosition{}, true},
		{"2.2.1.3", GridPosition{}, true},
		{"2.2.-1.1", GridPosition{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGridPosition(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGridPosition(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidGrid) {
					t.Errorf("错误应包装 ErrInvalidGrid: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseGridPosition(%q) = %+v, 期望 %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, 期望 %q", got.String(), tt.input)
			}
		})
	}
}

func TestGridCenter(t *testing.T) {
	r := Region{X: 100, Y: 100, Width: 200, Height: 200}

	tests := []struct {
		grid GridPosition
		want cv.Point
	}{
		{GridPosition{Rows: 2, Cols: 2, Row: 1, Col: 1}, cv.NewPoint(150, 150)},
		{GridPosition{Rows: 2, Cols: 2, Row: 1, Col: 2}, cv.NewPoint(250, 150)},
		{GridPosition{Rows: 2, Cols: 2, Row: 2, Col: 1}, cv.NewPoint(150, 250)},
		{GridPosition{Rows: 2, Cols: 2, Row: 2, Col: 2}, cv.NewPoint(250, 250)},
		{GridPosition{Rows: 3, Cols: 3, Row: 2, Col: 2}, cv.NewPoint(200, 200)},
		{GridPosition{Rows: 1, Cols: 4, Row: 1, Col: 4}, cv.NewPoint(275, 200)},
	}

	for _, tt := range tests {
		t.Run(tt.grid.String(), func(t *testing.T) {
			if got := tt.grid.Center(r); got != tt.want {
				t.Errorf("Center() = %s, 期望 %s", got, tt.want)
			}
		})
	}
}

func TestGridCellTilesRegion(t *testing.T) {
	r := Region{X: 7, Y: 3, Width: 25, Height: 11}
	rows, cols := 3, 4

	area := 0
	for row := 1; row <= rows; row++ {
		for col := 1; col <= cols; col++ {
			g := GridPosition{Rows: rows, Cols: cols, Row: row, Col: col}
			c := g.Cell(r)
			if !c.Rect().In(r.Rect()) {
				t.Errorf("格子 %s = %+v 超出区域", g, c)
			}
			if p := g.Center(r); !image.Pt(p.X, p.Y).In(c.Rect()) {
				t.Errorf("格子 %s 中心 %s 不在 %+v 内", g, p, c)
			}
			area += c.Width * c.Height
		}
	}
	if area != r.Width*r.Height {
		t.Errorf("格子总面积 = %d, 期望 %d", area, r.Width*r.Height)
	}
}

func TestGridPoint(t *testing.T) {
	r := Region{X: 100, Y: 100, Width: 200, Height: 200}

	p, err := GridPoint(r, "2.2.1.1")
	if err != nil || p != cv.NewPoint(150, 150) {
		t.Errorf("GridPoint(2.2.1.1) = %s, %v", p, err)
	}

	p, err = GridPoint(r, "")
	if err != nil || p != cv.NewPoint(200, 200) {
		t.Errorf("GridPoint(\"\") = %s, %v, 期望区域中心", p, err)
	}

	if _, err := GridPoint(r, "invalid"); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("GridPoint(invalid) 应返回 ErrInvalidGrid, 实际 %v", err)
	}
}

func BenchmarkParseGridPosition(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseGridPosition("3.3.2.2")
	}
}
