package utils

import (
	"github.com/duke-git/lancet/v2/slice"
)

// Unique 切片去重，保持原有顺序
func Unique[T comparable](s []T) []T {
	return slice.Unique(s)
}

// Contain 判断切片是否包含指定元素
func Contain[T comparable](s []T, v T) bool {
	return slice.Contain(s, v)
}

// Map 对切片中的每个元素应用转换函数
func Map[T, U any](s []T, fn func(index int, item T) U) []U {
	return slice.Map(s, fn)
}

// Filter 过滤切片
func Filter[T any](s []T, fn func(index int, item T) bool) []T {
	return slice.Filter(s, fn)
}
