package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/model"
)

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, 0, occupancyRate(0, 0))
	assert.Equal(t, 0, occupancyRate(0, 10))
	assert.Equal(t, 40, occupancyRate(4, 10))
	assert.Equal(t, 33, occupancyRate(1, 3))
	assert.Equal(t, 67, occupancyRate(2, 3))
	assert.Equal(t, 100, occupancyRate(7, 7))
}

func TestComputeStatsEmpty(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.occupancy.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalUnits)
	assert.Equal(t, int64(0), stats.OccupiedUnits)
	assert.Equal(t, 0, stats.OccupancyRate)
	assert.Equal(t, 0.0, stats.MonthlyRentRoll)
	assert.Empty(t, stats.BuildingCapacity)
}

func TestComputeStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var units []*model.Unit
	for i := 0; i < 6; i++ {
		units = append(units, env.createUnit(t, "A", fmt.Sprintf("10%d", i)))
	}
	for i := 0; i < 4; i++ {
		units = append(units, env.createUnit(t, "B", fmt.Sprintf("20%d", i)))
	}

	// A 栋入住 3 间，B 栋入住 1 间
	for i, idx := range []int{0, 1, 2, 6} {
		env.onboard(t, fmt.Sprintf("t%d", i), units[idx].ID)
	}

	stats, err := env.occupancy.ComputeStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalUnits)
	assert.Equal(t, int64(4), stats.OccupiedUnits)
	assert.Equal(t, int64(6), stats.AvailableUnits)
	assert.Equal(t, 40, stats.OccupancyRate)
	assert.InDelta(t, 4000.0, stats.MonthlyRentRoll, 0.001)

	require.Len(t, stats.BuildingCapacity, 2)
	assert.Equal(t, model.BuildingCapacity{Building: "A", Occupied: 3, Total: 6, Percentage: 50}, stats.BuildingCapacity[0])
	assert.Equal(t, model.BuildingCapacity{Building: "B", Occupied: 1, Total: 4, Percentage: 25}, stats.BuildingCapacity[1])
}

func TestAggregate(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := aggregate([]model.BuildingOccupancy{
		{Building: "A", Total: 3, Occupied: 1, RentRoll: 1000.005},
		{Building: "B", Total: 0, Occupied: 0, RentRoll: 0},
	}, at)

	assert.Equal(t, int64(3), stats.TotalUnits)
	assert.Equal(t, 33, stats.OccupancyRate)
	assert.Equal(t, 0, stats.BuildingCapacity[1].Percentage)
	assert.Equal(t, at, stats.GeneratedAt)
	assert.InDelta(t, 1000.0, stats.MonthlyRentRoll, 0.011)
}
