package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labstock/internal/domain"
	"labstock/internal/repository"

	"github.com/google/uuid"
)

type Service struct {
	models ModelRepository
	units  UnitRepository
	stock  StockRepository
	audit  ActivityRecorder
}

func NewService(models ModelRepository, units UnitRepository, stock StockRepository, audit ActivityRecorder) *Service {
	return &Service{
		models: models,
		units:  units,
		stock:  stock,
		audit:  audit,
	}
}

func (s *Service) CreateModel(ctx context.Context, actorID int64, req CreateModelRequest) (*domain.EquipmentModel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrValidation
	}
	m := &domain.EquipmentModel{
		Name:     req.Name,
		Category: req.Category,
		Verified: req.Verified,
	}
	if err := s.models.Create(ctx, m); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "model.create", "equipment_model", m.ID, m.Name)
	}
	return m, nil
}

func (s *Service) ListModels(ctx context.Context, verifiedOnly bool) ([]domain.EquipmentModel, error) {
	return s.models.List(ctx, verifiedOnly)
}

// VerifyModel marks a catalog entry as approved for intake.
func (s *Service) VerifyModel(ctx context.Context, actorID, modelID int64) (*domain.EquipmentModel, error) {
	if err := s.models.SetVerified(ctx, modelID, true); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "model.verify", "equipment_model", modelID, "")
	}
	return s.models.GetByID(ctx, modelID)
}

// IntakeUnits registers newly purchased physical units under a model and
// puts them on the shelf. Serial numbers are generated, one per unit.
func (s *Service) IntakeUnits(ctx context.Context, actorID int64, req IntakeRequest) ([]domain.Unit, error) {
	if req.Quantity <= 0 || req.Quantity > 500 {
		return nil, domain.ErrValidation
	}
	if req.Condition == "" {
		req.Condition = domain.ConditionNew
	}
	if !req.Condition.Valid() {
		return nil, domain.ErrValidation
	}
	if req.Location == "" {
		req.Location = domain.LocWarehouse
	}
	if req.Location != domain.LocWarehouse && req.Location != domain.LocLab {
		return nil, domain.ErrValidation
	}

	model, err := s.models.GetByID(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}
	if !model.Verified {
		return nil, ErrModelNotVerified
	}

	units := make([]*domain.Unit, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		units = append(units, &domain.Unit{
			ModelID:       model.ID,
			Serial:        newSerial(model),
			Status:        domain.UnitAvailable,
			Condition:     req.Condition,
			Location:      req.Location,
			PurchasePrice: req.PurchasePrice,
			Supplier:      req.Supplier,
			PurchaseDate:  req.PurchaseDate,
			WarrantyUntil: req.WarrantyUntil,
		})
	}
	if err := s.units.CreateBatch(ctx, units); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Log(ctx, actorID, "unit.intake", "equipment_model", model.ID,
			fmt.Sprintf("quantity=%d location=%s", req.Quantity, req.Location))
	}

	out := make([]domain.Unit, len(units))
	for i, u := range units {
		out[i] = *u
	}
	return out, nil
}

func (s *Service) ListUnits(ctx context.Context, f repository.UnitFilters) ([]domain.Unit, error) {
	if f.Location != "" && !f.Location.Valid() {
		return nil, domain.ErrValidation
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ErrValidation
	}
	return s.units.List(ctx, f)
}

// SuggestUnits ranks the available units of a model at a location and marks
// the qty best picks. Read-only: nothing is reserved.
func (s *Service) SuggestUnits(ctx context.Context, modelID int64, loc domain.Location, qty int) (*SuggestResponse, error) {
	if modelID == 0 || qty <= 0 {
		return nil, domain.ErrValidation
	}
	if loc == "" {
		loc = domain.LocLab
	}
	if loc != domain.LocWarehouse && loc != domain.LocLab {
		return nil, domain.ErrValidation
	}

	units, err := s.units.ListAvailable(ctx, modelID, loc)
	if err != nil {
		return nil, err
	}
	return &SuggestResponse{
		ModelID:  modelID,
		Location: loc,
		Quantity: qty,
		Units:    Rank(units, qty, time.Now().UTC()),
	}, nil
}

func (s *Service) RetireUnit(ctx context.Context, actorID int64, unitID int64) (*domain.Unit, error) {
	u, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	expect := repository.UnitPrecondition{Status: u.Status, Location: u.Location}
	if err := s.units.Retire(ctx, unitID, expect); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "unit.retire", "unit", unitID, u.Serial)
	}
	return s.units.GetByID(ctx, unitID)
}

func (s *Service) GetStock(ctx context.Context, modelID int64) ([]domain.StockRow, error) {
	if modelID == 0 {
		return s.stock.List(ctx)
	}
	return s.stock.ListByModel(ctx, modelID)
}

// ForceReconcile rebuilds the aggregate rows of a model at both shelf
// locations. Always safe: counters are derived from unit records.
func (s *Service) ForceReconcile(ctx context.Context, actorID int64, modelID int64) ([]domain.StockRow, error) {
	if modelID == 0 {
		return nil, domain.ErrValidation
	}
	var rows []domain.StockRow
	for _, loc := range []domain.Location{domain.LocWarehouse, domain.LocLab} {
		row, err := s.stock.Reconcile(ctx, modelID, loc)
		if err != nil {
			return nil, err
		}
		if row != nil {
			rows = append(rows, *row)
		}
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "stock.reconcile", "equipment_model", modelID, "")
	}
	return rows, nil
}

func newSerial(m *domain.EquipmentModel) string {
	prefix := "EQ"
	if len(m.Category) >= 2 {
		prefix = strings.ToUpper(m.Category[:2])
	}
	return fmt.Sprintf("%s-%d-%s", prefix, m.ID, strings.ToUpper(uuid.NewString()[:8]))
}
