package model

import "time"

// BuildingOccupancy 单栋楼的分组统计原始数据
type BuildingOccupancy struct {
	Building string
	Total    int64
	Occupied int64
	RentRoll float64
}

// BuildingCapacity 单栋楼入住情况
type BuildingCapacity struct {
	Building   string `json:"building"`
	Occupied   int64  `json:"occupied"`
	Total      int64  `json:"total"`
	Percentage int    `json:"percentage"`
}

// OccupancyStats 入住率统计，每次查询实时计算
type OccupancyStats struct {
	TotalUnits       int64              `json:"totalUnits"`
	OccupiedUnits    int64              `json:"occupiedUnits"`
	AvailableUnits   int64              `json:"availableUnits"`
	OccupancyRate    int                `json:"occupancyRate"`
	MonthlyRentRoll  float64            `json:"monthlyRentRoll"`
	BuildingCapacity []BuildingCapacity `json:"buildingCapacity"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}
