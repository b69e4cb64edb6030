package service

import "math"

// maxAmount decimal(12,2) 能存下的最大值
const maxAmount = 9999999999.99

// moneyAmount 校验金额并舍入到分，与 decimal(12,2) 列一致
func moneyAmount(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, validationError("%s must be a number", field)
	}
	if v < 0 {
		return 0, validationError("%s must not be negative", field)
	}
	rounded := math.Round(v*100) / 100
	if rounded > maxAmount {
		return 0, validationError("%s must not exceed %.2f", field, maxAmount)
	}
	return rounded, nil
}
