// Package cv 提供灰度模板匹配功能
//
// 匹配引擎基于归一化互相关 (NCC):
//   - 图像先转换为 8 位亮度 (Rec.709 权重)
//   - 源图像最长边超过 SizeThreshold 时，源图与模板按同一比例最近邻降采样
//   - 逐位置计算 NCC，取行优先扫描中第一个最大值
//   - 返回模板中心点在原图中的坐标
//
// 基本用法:
//
//	res, err := cv.MatchTemplateCenter(screen, button, cv.DefaultSizeThreshold)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("找到位置: (%d, %d) 置信度 %.3f\n", res.Result.X, res.Result.Y, res.Confidence)
//
//	// 自定义并行度与降采样阈值
//	m := cv.NewTemplateMatching(cv.WithSizeThreshold(800), cv.WithWorkers(4))
//	res, err = m.MatchCenter(screen, button)
package cv
