package domain

import "time"

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitBorrowed    UnitStatus = "borrowed"
	UnitRepairing   UnitStatus = "repairing"
	UnitBroken      UnitStatus = "broken"
	UnitRetired     UnitStatus = "retired"
	UnitMaintenance UnitStatus = "maintenance"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitBorrowed, UnitRepairing, UnitBroken, UnitRetired, UnitMaintenance:
		return true
	}
	return false
}

type UnitCondition string

const (
	ConditionNew  UnitCondition = "new"
	ConditionGood UnitCondition = "good"
	ConditionFair UnitCondition = "fair"
	ConditionPoor UnitCondition = "poor"
)

func (c UnitCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Location string

const (
	LocWarehouse  Location = "warehouse"
	LocLab        Location = "lab"
	LocRepairShop Location = "repair_shop"
)

func (l Location) Valid() bool {
	switch l {
	case LocWarehouse, LocLab, LocRepairShop:
		return true
	}
	return false
}

// ValidPlacement is the canonical rule for which (status, location) pairs a
// unit may occupy:
//
//   - available, broken, maintenance, retired: warehouse or lab
//   - borrowed: lab only (a loaned unit keeps the lab as its location)
//   - repairing: repair_shop only; OriginLocation records the warehouse/lab
//     slot the unit left and returns to
func ValidPlacement(s UnitStatus, l Location) bool {
	switch s {
	case UnitBorrowed:
		return l == LocLab
	case UnitRepairing:
		return l == LocRepairShop
	case UnitAvailable, UnitBroken, UnitRetired, UnitMaintenance:
		return l == LocWarehouse || l == LocLab
	}
	return false
}

// EquipmentModel is a catalog entry. Many units reference one model.
type EquipmentModel struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" validate:"required"`
	Category  string    `json:"category"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit is one physical, serial-numbered item of an equipment model.
//
// Holder fields are set iff Status == UnitBorrowed. OriginLocation is set
// iff Location == LocRepairShop.
type Unit struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	ModelID int64  `json:"model_id" gorm:"index:idx_units_model_location"`
	Serial  string `json:"serial" gorm:"uniqueIndex"`

	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice float64    `json:"purchase_price"`
	Supplier      string     `json:"supplier,omitempty"`
	WarrantyUntil *time.Time `json:"warranty_until,omitempty"`

	Status         UnitStatus    `json:"status" gorm:"index"`
	Condition      UnitCondition `json:"condition"`
	Location       Location      `json:"location" gorm:"index:idx_units_model_location"`
	OriginLocation Location      `json:"origin_location,omitempty"`

	HolderUserID *int64     `json:"holder_user_id,omitempty"`
	HolderLoanID *int64     `json:"holder_loan_id,omitempty"`
	HeldSince    *time.Time `json:"held_since,omitempty"`

	TotalBorrows    int        `json:"total_borrows"`
	TotalRepairs    int        `json:"total_repairs"`
	TotalRepairCost float64    `json:"total_repair_cost"`
	LastBorrowedAt  *time.Time `json:"last_borrowed_at,omitempty"`
	LastBorrowedBy  *int64     `json:"last_borrowed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveLocation rolls a repair_shop unit up to the warehouse/lab slot it
// belongs to for stock accounting.
func (u Unit) EffectiveLocation() Location {
	if u.Location == LocRepairShop {
		return u.OriginLocation
	}
	return u.Location
}
