package service

import (
	"context"
	"math"
	"time"

	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
)

// OccupancyService 入住率统计，每次查询都从同一条分组查询实时计算
type OccupancyService struct {
	unitRepo *repository.UnitRepository
	now      func() time.Time
}

func NewOccupancyService(unitRepo *repository.UnitRepository) *OccupancyService {
	return &OccupancyService{unitRepo: unitRepo, now: time.Now}
}

// occupancyRate 四舍五入到整数百分比，总数为 0 时返回 0
func occupancyRate(occupied, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(occupied) * 100 / float64(total)))
}

func (s *OccupancyService) ComputeStats(ctx context.Context) (*model.OccupancyStats, error) {
	rows, err := s.unitRepo.OccupancyByBuilding(ctx)
	if err != nil {
		return nil, storeError("compute occupancy", err)
	}
	return aggregate(rows, s.now().UTC()), nil
}

// aggregate 全局数字由各楼栋求和，保证与分组结果一致
func aggregate(rows []model.BuildingOccupancy, at time.Time) *model.OccupancyStats {
	stats := &model.OccupancyStats{
		BuildingCapacity: make([]model.BuildingCapacity, 0, len(rows)),
		GeneratedAt:      at,
	}

	for _, row := range rows {
		stats.TotalUnits += row.Total
		stats.OccupiedUnits += row.Occupied
		stats.MonthlyRentRoll += row.RentRoll
		stats.BuildingCapacity = append(stats.BuildingCapacity, model.BuildingCapacity{
			Building:   row.Building,
			Occupied:   row.Occupied,
			Total:      row.Total,
			Percentage: occupancyRate(row.Occupied, row.Total),
		})
	}

	stats.AvailableUnits = stats.TotalUnits - stats.OccupiedUnits
	stats.OccupancyRate = occupancyRate(stats.OccupiedUnits, stats.TotalUnits)
	stats.MonthlyRentRoll = math.Round(stats.MonthlyRentRoll*100) / 100
	return stats
}
