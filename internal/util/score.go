package util

import "math"

// ClampScore 将分数收敛到 [0, 100]
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RoundScore 四舍五入为整数分
func RoundScore(v float64) int {
	return int(math.Round(v))
}

// RatioScore 按通过比例换算百分制分数，total 为 0 时记 0 分
func RatioScore(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return RoundScore(float64(passed) / float64(total) * 100)
}
