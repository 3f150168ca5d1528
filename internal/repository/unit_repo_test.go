package repository

import (
	"context"
	"testing"

	"labstock/internal/database"
	"labstock/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db,
		&domain.EquipmentModel{},
		&domain.Unit{},
		&domain.StockRow{},
		&domain.Loan{},
		&domain.RepairTicket{},
	))
	return db
}

func seedModel(t *testing.T, db *gorm.DB) *domain.EquipmentModel {
	m := &domain.EquipmentModel{Name: "Bench Oscilloscope OS-1102", Category: "Measurement", Verified: true}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedUnit(t *testing.T, db *gorm.DB, u *domain.Unit) *domain.Unit {
	require.NoError(t, db.Create(u).Error)
	return u
}

func stockRow(t *testing.T, db *gorm.DB, modelID int64, loc domain.Location) domain.StockRow {
	var row domain.StockRow
	require.NoError(t, db.Where("model_id = ? AND location = ?", modelID, loc).First(&row).Error)
	return row
}

func TestUpdateStatusBatch_BrokenUnitToShop(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()
	m := seedModel(t, db)

	u := seedUnit(t, db, &domain.Unit{
		ModelID: m.ID, Serial: "ME-1-AAAA",
		Status: domain.UnitBroken, Location: domain.LocWarehouse,
	})

	// callers name only the origin; the shop location is implied
	err := repo.UpdateStatusBatch(ctx, []int64{u.ID},
		UnitPrecondition{Status: domain.UnitBroken},
		UnitChange{
			Status:         domain.UnitRepairing,
			OriginLocation: domain.LocWarehouse,
			BumpRepairs:    true,
		})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitRepairing, got.Status)
	assert.Equal(t, domain.LocRepairShop, got.Location)
	assert.Equal(t, domain.LocWarehouse, got.OriginLocation)
	assert.Equal(t, 1, got.TotalRepairs)

	row := stockRow(t, db, m.ID, domain.LocWarehouse)
	assert.Equal(t, 1, row.Repairing)
	assert.Equal(t, 0, row.Broken)
	assert.Equal(t, 1, row.Total)
}

func TestUpdateStatusBatch_RepairingRequiresOrigin(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()
	m := seedModel(t, db)

	u := seedUnit(t, db, &domain.Unit{
		ModelID: m.ID, Serial: "ME-1-BBBB",
		Status: domain.UnitBroken, Location: domain.LocLab,
	})

	err := repo.UpdateStatusBatch(ctx, []int64{u.ID},
		UnitPrecondition{Status: domain.UnitBroken},
		UnitChange{Status: domain.UnitRepairing})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitBroken, got.Status)
	assert.Equal(t, domain.LocLab, got.Location)
}

func TestUpdateStatusBatch_PreconditionConflictRollsBack(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()
	m := seedModel(t, db)

	ok := seedUnit(t, db, &domain.Unit{
		ModelID: m.ID, Serial: "ME-1-CCCC",
		Status: domain.UnitBroken, Location: domain.LocLab,
	})
	clash := seedUnit(t, db, &domain.Unit{
		ModelID: m.ID, Serial: "ME-1-DDDD",
		Status: domain.UnitAvailable, Location: domain.LocLab,
	})

	err := repo.UpdateStatusBatch(ctx, []int64{ok.ID, clash.ID},
		UnitPrecondition{Status: domain.UnitBroken},
		UnitChange{
			Status:         domain.UnitRepairing,
			OriginLocation: domain.LocLab,
			BumpRepairs:    true,
		})
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	// nothing mutated, not even the unit that matched
	got, err := repo.GetByID(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitBroken, got.Status)
	assert.Equal(t, 0, got.TotalRepairs)
}
