package auto

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/zoeyai/screenmatch/internal/logger"
	"github.com/zoeyai/screenmatch/pkg/device"
	"github.com/zoeyai/screenmatch/pkg/vision/cv"
)

// ErrWaitCanceled 等待在找到模板前被取消或超时
var ErrWaitCanceled = errors.New("等待模板被取消")

// Finder 在画面源上查找模板
// Finder 本身无可变状态，可以被多个 goroutine 同时使用
type Finder struct {
	source  device.FrameSource
	matcher Matcher
	region  *Region
	log     *logger.Logger
	hook    func(State)
}

// NewFinder 创建 Finder
func NewFinder(source device.FrameSource, opts ...Option) *Finder {
	f := &Finder{
		source:  source,
		matcher: cv.NewTemplateMatching(),
		log:     logger.Default().Named("auto"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder) setState(s State) {
	if f.hook != nil {
		f.hook(s)
	}
}

// Find 截图一次并返回最佳匹配，不比较阈值
func (f *Finder) Find(ctx context.Context, tmpl *Template) (cv.MatchResult, error) {
	if tmpl == nil {
		return cv.MatchResult{}, fmt.Errorf("模板为空: %w", cv.ErrEmptyImage)
	}
	f.setState(Capturing)
	frame, err := f.source.Capture(ctx)
	if err != nil {
		return cv.MatchResult{}, fmt.Errorf("截图失败: %w", err)
	}

	gray, dx, dy, err := f.searchArea(frame)
	if err != nil {
		return cv.MatchResult{}, err
	}

	f.setState(Matching)
	res, err := f.matcher.MatchGray(gray, tmpl.gray)
	if err != nil {
		return cv.MatchResult{}, fmt.Errorf("匹配 %s 失败: %w", tmpl.Name, err)
	}
	return res.Offset(dx, dy), nil
}

// searchArea 转换为亮度图并按 region 裁剪，返回裁剪偏移
func (f *Finder) searchArea(frame image.Image) (*image.Gray, int, int, error) {
	gray := cv.ToGray(frame)
	if f.region == nil {
		return gray, 0, 0, nil
	}
	r := f.region.Rect().Intersect(gray.Bounds())
	if r.Empty() {
		return nil, 0, 0, fmt.Errorf("搜索区域 %v 不在截图 %v 内: %w", f.region.Rect(), gray.Bounds(), cv.ErrEmptyImage)
	}
	return gray.SubImage(r).(*image.Gray), r.Min.X, r.Min.Y, nil
}

// Check 截图一次，分数严格大于 threshold 时返回结果，否则返回 nil
func (f *Finder) Check(ctx context.Context, tmpl *Template, threshold float64) (*cv.MatchResult, error) {
	res, err := f.Find(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	if res.Confidence > threshold {
		f.setState(Found)
		return &res, nil
	}
	f.setState(NotFound)
	return nil, nil
}

// Wait 每隔 interval 截图匹配一次，直到分数严格大于 threshold
// ctx 结束时返回同时包装 ErrWaitCanceled 和 ctx.Err() 的错误；
// 截图或匹配失败时立即返回，不重试
func (f *Finder) Wait(ctx context.Context, tmpl *Template, threshold float64, interval time.Duration) (cv.MatchResult, error) {
	if tmpl == nil {
		return cv.MatchResult{}, fmt.Errorf("模板为空: %w", cv.ErrEmptyImage)
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	start := time.Now()
	best := -1.0
	f.setState(Idle)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return cv.MatchResult{}, f.canceled(tmpl, start, attempt-1, best, err)
		}

		res, err := f.Find(ctx, tmpl)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return cv.MatchResult{}, f.canceled(tmpl, start, attempt-1, best, ctxErr)
			}
			f.log.LogEvent("WAIT", false, elapsedMs(start), fmt.Sprintf("%s: %v", tmpl.Name, err))
			return cv.MatchResult{}, err
		}
		best = max(best, res.Confidence)

		if res.Confidence > threshold {
			f.setState(Found)
			f.log.LogEvent("WAIT", true, elapsedMs(start),
				fmt.Sprintf("%s at %s conf=%.3f attempts=%d", tmpl.Name, res.Result, res.Confidence, attempt))
			return res, nil
		}
		f.setState(NotFound)
		f.log.Debug("%s 第 %d 次未找到: conf=%.3f <= %.3f", tmpl.Name, attempt, res.Confidence, threshold)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return cv.MatchResult{}, f.canceled(tmpl, start, attempt, best, ctx.Err())
		case <-timer.C:
		}
	}
}

func (f *Finder) canceled(tmpl *Template, start time.Time, attempts int, best float64, cause error) error {
	f.setState(Idle)
	f.log.LogEvent("WAIT", false, elapsedMs(start),
		fmt.Sprintf("%s: %v after %d attempts, best=%.3f", tmpl.Name, cause, attempts, best))
	return fmt.Errorf("%w: %s 尝试 %d 次, 最高分 %.3f: %w", ErrWaitCanceled, tmpl.Name, attempts, best, cause)
}

// WaitTimeout 带超时的 Wait，timeout <= 0 表示不限时
func (f *Finder) WaitTimeout(ctx context.Context, tmpl *Template, threshold float64, interval, timeout time.Duration) (cv.MatchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return f.Wait(ctx, tmpl, threshold, interval)
}

// Click 等待模板出现后点击中心点加 offset
func (f *Finder) Click(ctx context.Context, in device.Inputer, tmpl *Template, threshold float64, interval time.Duration, offset cv.Point) (cv.MatchResult, error) {
	res, err := f.Wait(ctx, tmpl, threshold, interval)
	if err != nil {
		return res, err
	}
	p := res.Result.Add(offset.X, offset.Y)
	if err := in.Click(ctx, p); err != nil {
		return res, fmt.Errorf("点击 %s 失败: %w", p, err)
	}
	f.log.Info("点击 %s at %s", tmpl.Name, p)
	return res, nil
}

// ClickGrid 等待模板出现后点击匹配区域内的网格位置
// gridStr 格式见 ParseGridPosition，为空时点击中心
func (f *Finder) ClickGrid(ctx context.Context, in device.Inputer, tmpl *Template, threshold float64, interval time.Duration, gridStr string) (cv.MatchResult, error) {
	if gridStr != "" {
		if _, err := ParseGridPosition(gridStr); err != nil {
			return cv.MatchResult{}, err
		}
	}
	res, err := f.Wait(ctx, tmpl, threshold, interval)
	if err != nil {
		return res, err
	}
	p, err := GridPoint(RegionFromRectangle(res.Rectangle), gridStr)
	if err != nil {
		return res, fmt.Errorf("计算网格位置失败: %w", err)
	}
	if err := in.Click(ctx, p); err != nil {
		return res, fmt.Errorf("点击 %s 失败: %w", p, err)
	}
	return res, nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
