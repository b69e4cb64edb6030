package service

import (
	"context"
	"errors"
	"strings"
	"time"

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

// OnboardingService 租户入住、退租与租约事务协调
type OnboardingService struct {
	userRepo   *repository.UserRepository
	tenantRepo *repository.TenantRepository
	leaseRepo  *repository.LeaseRepository
	units      *UnitService
	auth       *AuthService
	cipher     *FieldCipher
	txManager  *TransactionManager
	audit      *AuditService
	publisher  events.Publisher
	log        *logger.Logger
	now        func() time.Time
}

func NewOnboardingService(
	userRepo *repository.UserRepository,
	tenantRepo *repository.TenantRepository,
	leaseRepo *repository.LeaseRepository,
	units *UnitService,
	auth *AuthService,
	cipher *FieldCipher,
	txManager *TransactionManager,
	audit *AuditService,
	publisher events.Publisher,
	log *logger.Logger,
) *OnboardingService {
	return &OnboardingService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		leaseRepo:  leaseRepo,
		units:      units,
		auth:       auth,
		cipher:     cipher,
		txManager:  txManager,
		audit:      audit,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// parseStartDate 接受 2006-01-02 或 RFC3339，空值取当天
func parseStartDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	t, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, validationError("lease start date %q must be formatted as YYYY-MM-DD", value)
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func duplicateEmail(email string) *Error {
	return ErrDuplicateEmail.Withf("email %s is already registered, use a different email", email)
}

// OnboardTenant 在一个事务中创建用户、租户档案、占用房源并创建租约，任何一步失败全部回滚
func (s *OnboardingService) OnboardTenant(ctx context.Context, actor model.Actor, req model.OnboardTenantRequest) (*model.TenantView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	unitID, err := uuid.Parse(strings.TrimSpace(req.UnitID))
	if err != nil {
		return nil, validationError("unit id %q is not a valid id", req.UnitID)
	}
	startDate, err := parseStartDate(req.LeaseStartDate, s.now())
	if err != nil {
		return nil, err
	}
	deposit, err := moneyAmount("deposit amount", req.DepositAmount)
	if err != nil {
		return nil, err
	}

	// 耗时的哈希与加密放在事务外
	passwordHash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	nationalID := strings.TrimSpace(req.NationalID)
	encrypted, nonce, err := s.cipher.Seal(nationalID)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "failed to protect national id", Err: err}
	}

	var (
		user   *model.User
		tenant *model.Tenant
		lease  *model.Lease
		unit   *model.Unit
	)

	err = s.txManager.ExecuteDetached(ctx, func(ctx context.Context, tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		tenants := s.tenantRepo.WithTx(tx)
		leases := s.leaseRepo.WithTx(tx)

		exists, err := users.EmailExists(ctx, email, uuid.Nil)
		if err != nil {
			return storeError("check email", err)
		}
		if exists {
			return duplicateEmail(email)
		}

		user = &model.User{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         model.RoleTenant,
			IsActive:     true,
		}
		if err := users.Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return duplicateEmail(email)
			}
			return storeError("create user", err)
		}

		tenant = &model.Tenant{
			UserID:              user.ID,
			Phone:               strings.TrimSpace(req.Phone),
			NationalIDEncrypted: encrypted,
			NationalIDNonce:     nonce,
			EmergencyContact:    strings.TrimSpace(req.EmergencyContact),
		}
		if err := tenants.Create(ctx, tenant); err != nil {
			return storeError("create tenant", err)
		}

		if err := s.units.Reserve(ctx, tx, unitID); err != nil {
			return err
		}

		lease = &model.Lease{
			TenantID:      tenant.ID,
			UnitID:        unitID,
			StartDate:     startDate,
			DepositAmount: deposit,
			Active:        true,
		}
		if err := leases.Create(ctx, lease); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrUnitNotAvailable
			}
			return storeError("create lease", err)
		}

		unit, err = s.units.unitRepo.WithTx(tx).GetByID(ctx, unitID)
		return storeError("reload unit", err)
	})

	details := map[string]interface{}{"email": email, "unit_id": unitID.String()}
	if err != nil {
		s.audit.Record(ctx, actor, constants.AuditActionOnboard, constants.ResourceTypeTenant, "", details, err)
		if KindOf(err) == KindUnitNotAvailable {
			s.log.WarnContext(ctx, "Onboarding rejected, unit not available", zap.String("unit_id", unitID.String()))
		}
		return nil, err
	}

	s.audit.Record(ctx, actor, constants.AuditActionOnboard, constants.ResourceTypeTenant, tenant.ID.String(), details, nil)
	s.emit(ctx, constants.EventTenantOnboarded, actor, tenant.ID.String(), map[string]interface{}{
		"tenantId":   tenant.ID.String(),
		"userId":     user.ID.String(),
		"unitId":     unitID.String(),
		"leaseId":    lease.ID.String(),
		"building":   unit.Building,
		"unitNumber": unit.UnitNumber,
	})
	s.log.InfoContext(ctx, "Tenant onboarded",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", unitID.String()),
		zap.String("lease_id", lease.ID.String()))

	lease.Unit = unit
	tenant.User = user
	tenant.NationalID = nationalID
	tenant.Leases = []model.Lease{*lease}
	return s.tenantView(ctx, tenant), nil
}

// TerminateLease 结束有效租约并释放房源，两步在同一事务中
func (s *OnboardingService) TerminateLease(ctx context.Context, actor model.Actor, leaseID uuid.UUID) (*model.Lease, error) {
	var lease *model.Lease
	err := s.txManager.ExecuteDetached(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		lease, err = s.terminateInTx(ctx, tx, leaseID)
		return err
	})
	s.audit.Record(ctx, actor, constants.AuditActionTerminate, constants.ResourceTypeLease, leaseID.String(), nil, err)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, constants.EventLeaseTerminated, actor, lease.ID.String(), map[string]interface{}{
		"leaseId":  lease.ID.String(),
		"tenantId": lease.TenantID.String(),
		"unitId":   lease.UnitID.String(),
	})
	s.log.InfoContext(ctx, "Lease terminated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("unit_id", lease.UnitID.String()))
	return lease, nil
}

func (s *OnboardingService) terminateInTx(ctx context.Context, tx *gorm.DB, leaseID uuid.UUID) (*model.Lease, error) {
	leases := s.leaseRepo.WithTx(tx)

	lease, err := leases.GetByID(ctx, leaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("lease")
		}
		return nil, storeError("get lease", err)
	}

	rows, err := leases.Deactivate(ctx, leaseID, s.now().UTC())
	if err != nil {
		return nil, storeError("end lease", err)
	}
	if rows == 0 {
		return nil, ErrLeaseNotActive
	}

	if err := s.units.Release(ctx, tx, lease.UnitID); err != nil {
		return nil, err
	}

	lease, err = leases.GetByID(ctx, leaseID)
	if err != nil {
		return nil, storeError("reload lease", err)
	}
	return lease, nil
}

// EditTenantProfile 修改用户与档案字段，不涉及租约与房源
func (s *OnboardingService) EditTenantProfile(ctx context.Context, actor model.Actor, tenantID uuid.UUID, req model.UpdateTenantRequest) (*model.TenantView, error) {
	userFields := map[string]interface{}{}
	tenantFields := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		userFields["name"] = name
	}

	var email string
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil {
		tenantFields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.EmergencyContact != nil {
		tenantFields["emergency_contact"] = strings.TrimSpace(*req.EmergencyContact)
	}
	if req.NationalID != nil {
		encrypted, nonce, err := s.cipher.Seal(strings.TrimSpace(*req.NationalID))
		if err != nil {
			return nil, &Error{Kind: KindInternal, Message: "failed to protect national id", Err: err}
		}
		tenantFields["national_id_encrypted"] = encrypted
		tenantFields["national_id_nonce"] = nonce
	}

	var tenant *model.Tenant
	err := s.txManager.ExecuteWithRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		tenants := s.tenantRepo.WithTx(tx)

		current, err := tenants.GetByID(ctx, tenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("tenant")
			}
			return storeError("get tenant", err)
		}

		if email != "" && current.User != nil && email != current.User.Email {
			exists, err := users.EmailExists(ctx, email, current.UserID)
			if err != nil {
				return storeError("check email", err)
			}
			if exists {
				return duplicateEmail(email)
			}
			userFields["email"] = email
		}

		if err := users.UpdateFields(ctx, current.UserID, userFields); err != nil {
			if database.IsUniqueViolation(err) {
				return duplicateEmail(email)
			}
			return storeError("update user", err)
		}
		if err := tenants.UpdateFields(ctx, current.ID, tenantFields); err != nil {
			return storeError("update tenant", err)
		}

		tenant, err = tenants.GetByID(ctx, tenantID)
		return storeError("reload tenant", err)
	})
	s.audit.Record(ctx, actor, constants.AuditActionUpdate, constants.ResourceTypeTenant, tenantID.String(), nil, err)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, constants.EventTenantUpdated, actor, tenantID.String(), nil)
	return s.tenantView(ctx, tenant), nil
}

// OffboardTenant 结束有效租约、停用用户、软删除租户档案并吊销全部会话
func (s *OnboardingService) OffboardTenant(ctx context.Context, actor model.Actor, tenantID uuid.UUID) error {
	var (
		userID       uuid.UUID
		endedLeaseID *uuid.UUID
	)

	err := s.txManager.ExecuteDetached(ctx, func(ctx context.Context, tx *gorm.DB) error {
		tenants := s.tenantRepo.WithTx(tx)
		endedLeaseID = nil

		tenant, err := tenants.GetByID(ctx, tenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("tenant")
			}
			return storeError("get tenant", err)
		}
		userID = tenant.UserID

		active, err := s.leaseRepo.WithTx(tx).GetActiveByTenantID(ctx, tenant.ID)
		switch {
		case err == nil:
			if _, err := s.terminateInTx(ctx, tx, active.ID); err != nil {
				return err
			}
			endedLeaseID = &active.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return storeError("get active lease", err)
		}

		if err := s.userRepo.WithTx(tx).Deactivate(ctx, tenant.UserID); err != nil {
			return storeError("deactivate user", err)
		}
		if err := tenants.Delete(ctx, tenant.ID); err != nil {
			return storeError("delete tenant", err)
		}
		return nil
	})
	s.audit.Record(ctx, actor, constants.AuditActionOffboard, constants.ResourceTypeTenant, tenantID.String(), nil, err)
	if err != nil {
		return err
	}

	// 会话存储可能不在同一数据库中，提交后再吊销
	if _, err := s.auth.RevokeUserSessions(context.WithoutCancel(ctx), userID); err != nil {
		s.log.WarnContext(ctx, "Failed to revoke sessions of offboarded user",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	data := map[string]interface{}{"tenantId": tenantID.String(), "userId": userID.String()}
	if endedLeaseID != nil {
		data["leaseId"] = endedLeaseID.String()
		s.emit(ctx, constants.EventLeaseTerminated, actor, endedLeaseID.String(), data)
	}
	s.emit(ctx, constants.EventTenantOffboarded, actor, tenantID.String(), data)
	s.log.InfoContext(ctx, "Tenant offboarded", zap.String("tenant_id", tenantID.String()))
	return nil
}

// ListTenants 按姓名或邮箱搜索租户
func (s *OnboardingService) ListTenants(ctx context.Context, filter model.TenantFilter) ([]*model.TenantView, error) {
	tenants, err := s.tenantRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list tenants", err)
	}
	views := make([]*model.TenantView, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, s.tenantView(ctx, t))
	}
	return views, nil
}

func (s *OnboardingService) GetTenant(ctx context.Context, id uuid.UUID) (*model.TenantView, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tenant")
		}
		return nil, storeError("get tenant", err)
	}
	return s.tenantView(ctx, tenant), nil
}

// GetTenantForUser 租户本人查看自己的档案
func (s *OnboardingService) GetTenantForUser(ctx context.Context, userID uuid.UUID) (*model.TenantView, error) {
	tenant, err := s.tenantRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tenant profile")
		}
		return nil, storeError("get tenant", err)
	}
	return s.tenantView(ctx, tenant), nil
}

// GetTenantAs 管理员可查看任意租户，租户只能查看自己
func (s *OnboardingService) GetTenantAs(ctx context.Context, sess *model.Session, id uuid.UUID) (*model.TenantView, error) {
	if err := s.auth.Authorize(sess, model.RoleCaretaker, model.RoleTenant); err != nil {
		return nil, err
	}
	view, err := s.GetTenant(ctx, id)
	if err != nil {
		if sess.Role == model.RoleTenant && KindOf(err) == KindNotFound {
			// 不向租户暴露其他档案是否存在
			return nil, ErrForbidden
		}
		return nil, err
	}
	if sess.Role == model.RoleTenant && (view.User == nil || view.User.ID != sess.UserID) {
		return nil, ErrForbidden
	}
	return view, nil
}

// ListLeases 租约历史
func (s *OnboardingService) ListLeases(ctx context.Context, filter model.LeaseFilter) ([]*model.LeaseView, error) {
	leases, err := s.leaseRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list leases", err)
	}
	views := make([]*model.LeaseView, 0, len(leases))
	for _, l := range leases {
		views = append(views, l.View())
	}
	return views, nil
}

func (s *OnboardingService) tenantView(ctx context.Context, tenant *model.Tenant) *model.TenantView {
	view := &model.TenantView{
		ID:               tenant.ID,
		User:             tenant.User.View(),
		Phone:            tenant.Phone,
		NationalID:       tenant.NationalID,
		EmergencyContact: tenant.EmergencyContact,
		Leases:           make([]*model.LeaseView, 0, len(tenant.Leases)),
		CreatedAt:        tenant.CreatedAt,
		UpdatedAt:        tenant.UpdatedAt,
	}

	if view.NationalID == "" && tenant.NationalIDEncrypted != "" {
		nationalID, err := s.cipher.Open(tenant.NationalIDEncrypted, tenant.NationalIDNonce)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to decrypt national id", zap.String("tenant_id", tenant.ID.String()), zap.Error(err))
		} else {
			view.NationalID = nationalID
		}
	}

	for i := range tenant.Leases {
		lease := &tenant.Leases[i]
		view.Leases = append(view.Leases, lease.View())
		if lease.Active && !view.LeaseActive {
			startDate := lease.StartDate
			view.LeaseActive = true
			view.LeaseStartDate = &startDate
			view.Unit = lease.Unit
		}
	}
	return view
}

func (s *OnboardingService) emit(ctx context.Context, eventType string, actor model.Actor, resourceID string, data map[string]interface{}) {
	event := events.NewEvent(eventType, actor.UserID, resourceID, data)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.WarnContext(ctx, "Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
