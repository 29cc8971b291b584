package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrDuplicateOperation 幂等键已被使用：同一操作不会重复生效
var ErrDuplicateOperation = errors.New("该操作已执行，忽略重复请求")

// ErrLockTimeout 获取资源锁超时
var ErrLockTimeout = errors.New("资源繁忙，请稍后重试")
