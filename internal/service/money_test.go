package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    float64
		wantErr bool
	}{
		{name: "whole", in: 1200, want: 1200},
		{name: "rounds half cent up", in: 0.125, want: 0.13},
		{name: "drops sub-cent noise", in: 0.1 + 0.2, want: 0.3},
		{name: "zero", in: 0, want: 0},
		{name: "negative", in: -1, wantErr: true},
		{name: "nan", in: math.NaN(), wantErr: true},
		{name: "infinite", in: math.Inf(1), wantErr: true},
		{name: "too large", in: 1e10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := moneyAmount("rent amount", tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
