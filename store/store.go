// Package store 提供 core.Store / core.KeyValueStore 的具体实现。
// 接口定义在 core 包（依赖倒置：领域层定义接口，基础设施层实现）。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	var kv core.KeyValueStore = store.NewMemoryStore()
package store

import "github.com/rushteam/shoprec/core"

// 包内别名，便于实现文件直接引用。
type Store = core.Store
type KeyValueStore = core.KeyValueStore

// 错误别名（统一走 core 的 DomainError）。
var (
	ErrNotFound     = core.ErrStoreNotFound
	ErrNotSupported = core.ErrStoreNotSupported
)
