package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/database"
	"github.com/taichu-system/tenancy-management/internal/events"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitService 房源生命周期管理，状态机 AVAILABLE <-> OCCUPIED
type UnitService struct {
	unitRepo  *repository.UnitRepository
	txManager *TransactionManager
	audit     *AuditService
	publisher events.Publisher
	log       *logger.Logger
}

func NewUnitService(unitRepo *repository.UnitRepository, txManager *TransactionManager, audit *AuditService, publisher events.Publisher, log *logger.Logger) *UnitService {
	return &UnitService{
		unitRepo:  unitRepo,
		txManager: txManager,
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

func unitKeyFields(building, unitNumber string) (string, string, error) {
	building = strings.TrimSpace(building)
	unitNumber = strings.TrimSpace(unitNumber)
	if building == "" {
		return "", "", validationError("building is required")
	}
	if unitNumber == "" {
		return "", "", validationError("unit number is required")
	}
	return building, unitNumber, nil
}

// Create 创建房源，初始状态 AVAILABLE
func (s *UnitService) Create(ctx context.Context, actor model.Actor, req model.CreateUnitRequest) (*model.Unit, error) {
	building, unitNumber, err := unitKeyFields(req.Building, req.UnitNumber)
	if err != nil {
		return nil, err
	}
	rent, err := moneyAmount("rent amount", req.RentAmount)
	if err != nil {
		return nil, err
	}

	exists, err := s.unitRepo.KeyExists(ctx, building, unitNumber, uuid.Nil)
	if err != nil {
		return nil, storeError("check unit key", err)
	}
	if exists {
		return nil, ErrDuplicateUnitKey.Withf("unit %s/%s already exists, use a different unit number", building, unitNumber)
	}

	unit := &model.Unit{
		Building:    building,
		UnitNumber:  unitNumber,
		Description: strings.TrimSpace(req.Description),
		RentAmount:  rent,
		Status:      model.UnitStatusAvailable,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateUnitKey.Withf("unit %s/%s already exists, use a different unit number", building, unitNumber)
		}
		return nil, storeError("create unit", err)
	}

	s.audit.Record(ctx, actor, constants.AuditActionCreate, constants.ResourceTypeUnit, unit.ID.String(),
		map[string]interface{}{"building": building, "unit_number": unitNumber}, nil)
	s.publish(ctx, constants.EventUnitCreated, actor, unit)
	return unit, nil
}

// Get 查询房源及当前住户
func (s *UnitService) Get(ctx context.Context, id uuid.UUID) (*model.UnitView, error) {
	unit, err := s.unitRepo.GetWithOccupant(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("unit")
		}
		return nil, storeError("get unit", err)
	}
	return unitView(unit), nil
}

// ListAll 列出全部房源并带出当前住户
func (s *UnitService) ListAll(ctx context.Context, filter model.UnitFilter) ([]*model.UnitView, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("status must be AVAILABLE or OCCUPIED")
	}
	units, err := s.unitRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list units", err)
	}
	views := make([]*model.UnitView, 0, len(units))
	for _, u := range units {
		views = append(views, unitView(u))
	}
	return views, nil
}

// ListAvailable 列出可入住房源
func (s *UnitService) ListAvailable(ctx context.Context) ([]*model.Unit, error) {
	units, err := s.unitRepo.ListByStatus(ctx, model.UnitStatusAvailable)
	if err != nil {
		return nil, storeError("list available units", err)
	}
	return units, nil
}

func unitView(unit *model.Unit) *model.UnitView {
	view := &model.UnitView{Unit: unit}
	for i := range unit.Leases {
		lease := &unit.Leases[i]
		if !lease.Active {
			continue
		}
		occupant := &model.OccupantView{
			LeaseID:   lease.ID,
			TenantID:  lease.TenantID,
			StartDate: lease.StartDate,
		}
		if lease.Tenant != nil && lease.Tenant.User != nil {
			occupant.Name = lease.Tenant.User.Name
			occupant.Email = lease.Tenant.User.Email
		}
		view.Occupant = occupant
		break
	}
	return view
}

// Update 修改房源属性，从不修改状态；自然键冲突时原记录保持不变
func (s *UnitService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateUnitRequest) (*model.Unit, error) {
	var updated *model.Unit
	err := s.txManager.ExecuteWithRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		units := s.unitRepo.WithTx(tx)

		unit, err := units.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("unit")
			}
			return storeError("get unit", err)
		}

		building, unitNumber := unit.Building, unit.UnitNumber
		if req.Building != nil {
			building = *req.Building
		}
		if req.UnitNumber != nil {
			unitNumber = *req.UnitNumber
		}
		building, unitNumber, err = unitKeyFields(building, unitNumber)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if building != unit.Building || unitNumber != unit.UnitNumber {
			exists, err := units.KeyExists(ctx, building, unitNumber, unit.ID)
			if err != nil {
				return storeError("check unit key", err)
			}
			if exists {
				return ErrDuplicateUnitKey.Withf("unit %s/%s already exists, use a different unit number", building, unitNumber)
			}
			fields["building"] = building
			fields["unit_number"] = unitNumber
		}
		if req.Description != nil {
			fields["description"] = strings.TrimSpace(*req.Description)
		}
		if req.RentAmount != nil {
			rent, err := moneyAmount("rent amount", *req.RentAmount)
			if err != nil {
				return err
			}
			fields["rent_amount"] = rent
		}

		if len(fields) > 0 {
			if err := units.UpdateFields(ctx, unit.ID, fields); err != nil {
				if database.IsUniqueViolation(err) {
					return ErrDuplicateUnitKey.Withf("unit %s/%s already exists, use a different unit number", building, unitNumber)
				}
				return storeError("update unit", err)
			}
		}

		updated, err = units.GetByID(ctx, unit.ID)
		return storeError("reload unit", err)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, constants.AuditActionUpdate, constants.ResourceTypeUnit, id.String(), nil, nil)
	s.publish(ctx, constants.EventUnitUpdated, actor, updated)
	return updated, nil
}

// Delete 仅当房源为 AVAILABLE 时删除
func (s *UnitService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	var deleted *model.Unit
	err := s.txManager.ExecuteWithRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		units := s.unitRepo.WithTx(tx)

		unit, err := units.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("unit")
			}
			return storeError("get unit", err)
		}

		rows, err := units.DeleteIfStatus(ctx, id, model.UnitStatusAvailable)
		if err != nil {
			return storeError("delete unit", err)
		}
		if rows == 0 {
			return ErrUnitOccupied.Withf("unit %s/%s is occupied, terminate its lease first", unit.Building, unit.UnitNumber)
		}
		deleted = unit
		return nil
	})
	s.audit.Record(ctx, actor, constants.AuditActionDelete, constants.ResourceTypeUnit, id.String(), nil, err)
	if err != nil {
		return err
	}

	s.publish(ctx, constants.EventUnitDeleted, actor, deleted)
	return nil
}

// Reserve AVAILABLE -> OCCUPIED，必须在调用方的事务中执行
func (s *UnitService) Reserve(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) error {
	return s.transition(ctx, tx, unitID, model.UnitStatusAvailable, model.UnitStatusOccupied)
}

// Release OCCUPIED -> AVAILABLE，必须在调用方的事务中执行
func (s *UnitService) Release(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) error {
	return s.transition(ctx, tx, unitID, model.UnitStatusOccupied, model.UnitStatusAvailable)
}

func (s *UnitService) transition(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, from, to model.UnitStatus) error {
	units := s.unitRepo.WithTx(tx)

	rows, err := units.TransitionStatus(ctx, unitID, from, to)
	if err != nil {
		return storeError("update unit status", err)
	}
	if rows == 1 {
		return nil
	}

	// 区分房源不存在与状态不符
	unit, err := units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("unit")
		}
		return storeError("get unit", err)
	}

	s.log.WarnContext(ctx, "Unit status transition rejected",
		zap.String("unit_id", unitID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("current", string(unit.Status)))

	if from == model.UnitStatusAvailable {
		return ErrUnitNotAvailable.Withf("unit %s/%s is not available, choose another unit", unit.Building, unit.UnitNumber)
	}
	return ErrUnitNotOccupied.Withf("unit %s/%s is not occupied", unit.Building, unit.UnitNumber)
}

func (s *UnitService) publish(ctx context.Context, eventType string, actor model.Actor, unit *model.Unit) {
	if unit == nil {
		return
	}
	event := events.NewEvent(eventType, actor.UserID, unit.ID.String(), map[string]interface{}{
		"building":   unit.Building,
		"unitNumber": unit.UnitNumber,
		"status":     string(unit.Status),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
