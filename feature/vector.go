package feature

import "math"

// Vector 是定长稠密特征向量（用户口味 / 商品属性 Embedding）。
// 只需要稠密数组上的点积/余弦运算，不涉及任何张量图执行语义。
type Vector []float64

// Dot 计算点积。长度不一致时按 0 处理缺失维度。
func (v Vector) Dot(other Vector) float64 {
	n := len(v)
	if len(other) < n {
		n = len(other)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += v[i] * other[i]
	}
	return dot
}

// Norm 计算 L2 范数。
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine 计算余弦相似度。任一向量范数为 0 时定义为 0，从不产生 NaN。
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// clamp01 将 x 截断到 [0,1]。
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
