// Package stats 考核统计核心：互评汇总、排名、部门汇总、分数段分布、投票计票与考勤扣分。
//
// 包内全部函数为纯计算，不做 I/O；同样的输入总是得到同样的输出。
// 数据质量问题（引用不存在的用户、越界分值）按单条记录降级处理，不会返回错误。
package stats

import "math"

// Round1 四舍五入保留一位小数（远离零方向）
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Round(x*10) / 10
}

// ratio 分母为 0 时返回 0
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percentage 百分比，保留一位小数，分母为 0 时为 0
func Percentage(part, total int) float64 {
	return Round1(ratio(float64(part), float64(total)) * 100)
}
