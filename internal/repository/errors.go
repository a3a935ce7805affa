package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反（email重複など）
	ErrDuplicate = errors.New("duplicate")
)
