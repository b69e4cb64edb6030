package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/constants"
	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestUnitServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unit := env.createUnit(t, "A", "101")
	assert.Equal(t, model.UnitStatusAvailable, unit.Status)
	assert.NotEqual(t, uuid.Nil, unit.ID)

	_, err := env.units.Create(ctx, env.caretaker, model.CreateUnitRequest{Building: "A", UnitNumber: "101", RentAmount: 900})
	assert.ErrorIs(t, err, ErrDuplicateUnitKey)

	// 同号不同楼栋允许
	_, err = env.units.Create(ctx, env.caretaker, model.CreateUnitRequest{Building: "B", UnitNumber: "101", RentAmount: 900})
	assert.NoError(t, err)

	_, err = env.units.Create(ctx, env.caretaker, model.CreateUnitRequest{Building: " ", UnitNumber: "102"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = env.units.Create(ctx, env.caretaker, model.CreateUnitRequest{Building: "A", UnitNumber: "103", RentAmount: -1})
	assert.Equal(t, KindValidation, KindOf(err))

	// 金额按分存储
	priced, err := env.units.Create(ctx, env.caretaker, model.CreateUnitRequest{Building: "A", UnitNumber: "104", RentAmount: 1200.456})
	require.NoError(t, err)
	stored, err := env.units.Get(ctx, priced.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.46, stored.RentAmount)

	assert.Contains(t, env.publisher.Types(), constants.EventUnitCreated)
}

func TestUnitServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a101 := env.createUnit(t, "A", "101")
	a102 := env.createUnit(t, "A", "102")

	t.Run("attributes and version", func(t *testing.T) {
		rent := 1250.5
		updated, err := env.units.Update(ctx, env.caretaker, a101.ID, model.UpdateUnitRequest{
			Description: strPtr("corner unit"),
			RentAmount:  &rent,
		})
		require.NoError(t, err)
		assert.Equal(t, "corner unit", updated.Description)
		assert.Equal(t, 1250.5, updated.RentAmount)
		assert.Equal(t, a101.Version+1, updated.Version)
		assert.Equal(t, model.UnitStatusAvailable, updated.Status)
	})

	t.Run("natural key collision leaves original unchanged", func(t *testing.T) {
		before, err := env.units.Get(ctx, a102.ID)
		require.NoError(t, err)

		_, err = env.units.Update(ctx, env.caretaker, a102.ID, model.UpdateUnitRequest{
			UnitNumber:  strPtr("101"),
			Description: strPtr("should not stick"),
		})
		assert.ErrorIs(t, err, ErrDuplicateUnitKey)

		after, err := env.units.Get(ctx, a102.ID)
		require.NoError(t, err)
		assert.Equal(t, before.UnitNumber, after.UnitNumber)
		assert.Equal(t, before.Description, after.Description)
		assert.Equal(t, before.Version, after.Version)
	})

	t.Run("rename to free key", func(t *testing.T) {
		updated, err := env.units.Update(ctx, env.caretaker, a102.ID, model.UpdateUnitRequest{Building: strPtr("B")})
		require.NoError(t, err)
		assert.Equal(t, "B", updated.Building)
		assert.Equal(t, "102", updated.UnitNumber)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := env.units.Update(ctx, env.caretaker, uuid.New(), model.UpdateUnitRequest{Description: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("status untouched while occupied", func(t *testing.T) {
		env.onboard(t, "jane", a101.ID)
		updated, err := env.units.Update(ctx, env.caretaker, a101.ID, model.UpdateUnitRequest{Description: strPtr("occupied")})
		require.NoError(t, err)
		assert.Equal(t, model.UnitStatusOccupied, updated.Status)
	})
}

func TestUnitServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	free := env.createUnit(t, "A", "101")
	taken := env.createUnit(t, "A", "102")
	env.onboard(t, "jane", taken.ID)

	require.NoError(t, env.units.Delete(ctx, env.caretaker, free.ID))
	_, err := env.units.Get(ctx, free.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.units.Delete(ctx, env.caretaker, taken.ID)
	assert.ErrorIs(t, err, ErrUnitOccupied)
	view, err := env.units.Get(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnitStatusOccupied, view.Status)

	assert.ErrorIs(t, env.units.Delete(ctx, env.caretaker, uuid.New()), ErrNotFound)
}

func TestUnitServiceTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unit := env.createUnit(t, "A", "101")

	inTx := func(fn func(tx *gorm.DB) error) error {
		return env.db.Transaction(fn)
	}

	require.NoError(t, inTx(func(tx *gorm.DB) error { return env.units.Reserve(ctx, tx, unit.ID) }))

	err := inTx(func(tx *gorm.DB) error { return env.units.Reserve(ctx, tx, unit.ID) })
	assert.ErrorIs(t, err, ErrUnitNotAvailable)

	require.NoError(t, inTx(func(tx *gorm.DB) error { return env.units.Release(ctx, tx, unit.ID) }))

	err = inTx(func(tx *gorm.DB) error { return env.units.Release(ctx, tx, unit.ID) })
	assert.ErrorIs(t, err, ErrUnitNotOccupied)

	err = inTx(func(tx *gorm.DB) error { return env.units.Reserve(ctx, tx, uuid.New()) })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitServiceListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a101 := env.createUnit(t, "A", "101")
	env.createUnit(t, "A", "102")
	env.createUnit(t, "B", "201")
	tenant := env.onboard(t, "jane", a101.ID)

	all, err := env.units.ListAll(ctx, model.UnitFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	var occupied *model.UnitView
	for _, v := range all {
		if v.ID == a101.ID {
			occupied = v
		} else {
			assert.Nil(t, v.Occupant)
		}
	}
	require.NotNil(t, occupied)
	require.NotNil(t, occupied.Occupant)
	assert.Equal(t, tenant.ID, occupied.Occupant.TenantID)
	assert.Equal(t, "jane", occupied.Occupant.Name)

	available, err := env.units.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)
	for _, u := range available {
		assert.Equal(t, model.UnitStatusAvailable, u.Status)
	}

	inB, err := env.units.ListAll(ctx, model.UnitFilter{Building: "B"})
	require.NoError(t, err)
	assert.Len(t, inB, 1)

	_, err = env.units.ListAll(ctx, model.UnitFilter{Status: "VACANT"})
	assert.Equal(t, KindValidation, KindOf(err))
}
