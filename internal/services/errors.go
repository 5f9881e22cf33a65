package services

import (
	"errors"
	"fmt"
)

// 错误分级：
//   - ValidationError 用户可改后重试，不落库
//   - ConflictError   基于过期状态的操作，读最新状态后重试
//   - ErrNotFound     目标记录已不存在
//   - ErrDependencyTimeout 外部依赖超时；提交链路内部兜底为 pending，不直接抛给终端用户

var (
	ErrNotFound          = errors.New("record not found")
	ErrDependencyTimeout = errors.New("dependency timed out")
)

// ValidationError 提交校验失败
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

// ConflictError 状态机乐观并发冲突
type ConflictError struct {
	Cid  string
	Want string // 操作假设的当前状态
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("comment %s is no longer in status %s", e.Cid, e.Want)
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict 判断是否为并发冲突
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
