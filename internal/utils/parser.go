package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseInt 解析整数，如果解析失败则返回默认值
func ParseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return result
}

// ParseUUID 解析UUID，如果解析失败则返回零值和错误
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// ParseOptionalUUID 空字符串返回 nil
func ParseOptionalUUID(s string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseUUID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseOptionalBool 空字符串返回 nil
func ParseOptionalBool(s string) (*bool, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
