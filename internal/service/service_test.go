package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/events"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/model"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/session"
	"github.com/taichu-system/tenancy-management/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "secret-pass"

type testEnv struct {
	db         *gorm.DB
	auth       *AuthService
	units      *UnitService
	onboarding *OnboardingService
	occupancy  *OccupancyService
	audit      *AuditService
	publisher  *events.MemoryPublisher
	caretaker  model.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.NewNop()
	publisher := events.NewMemoryPublisher()

	userRepo := repository.NewUserRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	audit := NewAuditService(repository.NewAuditRepository(db), log)
	txManager := NewTransactionManager(db, config.TransactionConfig{MaxRetries: 3, Backoff: time.Millisecond, Timeout: 5 * time.Second}, log)

	auth, err := NewAuthService(userRepo, session.NewDatabaseStore(repository.NewSessionRepository(db)), audit, config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, log)
	require.NoError(t, err)

	cipher, err := NewFieldCipher("test-encryption-key")
	require.NoError(t, err)

	units := NewUnitService(unitRepo, txManager, audit, publisher, log)
	onboarding := NewOnboardingService(userRepo, repository.NewTenantRepository(db), repository.NewLeaseRepository(db),
		units, auth, cipher, txManager, audit, publisher, log)

	return &testEnv{
		db:         db,
		auth:       auth,
		units:      units,
		onboarding: onboarding,
		occupancy:  NewOccupancyService(unitRepo),
		audit:      audit,
		publisher:  publisher,
		caretaker:  model.Actor{UserID: uuid.New(), Role: model.RoleCaretaker},
	}
}

func (e *testEnv) createUnit(t *testing.T, building, number string) *model.Unit {
	t.Helper()
	unit, err := e.units.Create(context.Background(), e.caretaker, model.CreateUnitRequest{
		Building:   building,
		UnitNumber: number,
		RentAmount: 1000,
	})
	require.NoError(t, err)
	return unit
}

func onboardRequest(name string, unitID uuid.UUID) model.OnboardTenantRequest {
	return model.OnboardTenantRequest{
		Name:             name,
		Email:            fmt.Sprintf("%s@example.com", name),
		Password:         testPassword,
		Phone:            "555-0100",
		NationalID:       "ID-" + name,
		EmergencyContact: "Mom 555-0199",
		UnitID:           unitID.String(),
		LeaseStartDate:   "2024-03-01",
		DepositAmount:    500,
	}
}

func (e *testEnv) onboard(t *testing.T, name string, unitID uuid.UUID) *model.TenantView {
	t.Helper()
	view, err := e.onboarding.OnboardTenant(context.Background(), e.caretaker, onboardRequest(name, unitID))
	require.NoError(t, err)
	return view
}

func (e *testEnv) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// requireConsistent 已入住房源数必须等于有效租约数，且每个租户最多一份有效租约
func (e *testEnv) requireConsistent(t *testing.T) {
	t.Helper()
	occupied := e.count(t, &model.Unit{}, "status = ?", model.UnitStatusOccupied)
	active := e.count(t, &model.Lease{}, "active = ?", true)
	require.Equal(t, occupied, active, "occupied units must equal active leases")

	var perTenant []struct {
		TenantID uuid.UUID
		N        int64
	}
	require.NoError(t, e.db.Model(&model.Lease{}).
		Select("tenant_id, COUNT(*) AS n").
		Where("active = ?", true).
		Group("tenant_id").
		Scan(&perTenant).Error)
	for _, row := range perTenant {
		require.LessOrEqual(t, row.N, int64(1), "tenant %s has more than one active lease", row.TenantID)
	}
}
