package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorKinds(t *testing.T) {
	specific := ErrUnitNotAvailable.Withf("unit %s is taken", "A/101")
	assert.ErrorIs(t, specific, ErrUnitNotAvailable)
	assert.NotErrorIs(t, specific, ErrUnitOccupied)
	assert.Equal(t, "unit A/101 is taken", specific.Error())

	wrapped := fmt.Errorf("onboard: %w", specific)
	assert.Equal(t, KindUnitNotAvailable, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, storeError("op", nil))
	assert.Equal(t, KindNotFound, KindOf(storeError("get", gorm.ErrRecordNotFound)))
	assert.Equal(t, KindUnavailable, KindOf(storeError("get", errors.New("connection refused"))))

	internal := storeError("get", errors.New("syntax error"))
	assert.Equal(t, KindInternal, KindOf(internal))
	assert.Contains(t, internal.Error(), "failed to get")

	// 业务错误原样透传
	assert.Same(t, ErrLeaseNotActive, storeError("op", ErrLeaseNotActive))
}
