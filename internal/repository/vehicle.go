package repository

import (
	"context"

	"crewz/internal/cache"
	"crewz/internal/models"
	"crewz/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VehicleRepository persists garage entries. Mutations are scoped to the owner; a vehicle the
// caller does not own is reported as not found.
type VehicleRepository interface {
	Create(ctx context.Context, v *models.Vehicle) error
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error)
	Update(ctx context.Context, id, ownerID string, patch *models.Vehicle, columns []string) (*models.Vehicle, error)
	Delete(ctx context.Context, id, ownerID string) error
	AppendImage(ctx context.Context, id, ownerID, image string) (*models.Vehicle, error)
	Summaries(ctx context.Context, ids []string) (map[string]*models.VehicleSummary, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	defer observability.TrackQuery("create", "vehicles")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		return increment(tx, &models.User{}, "vehicles_count", 1, "id = ?", v.UserID)
	})
	if err != nil {
		return internal(err)
	}
	cache.InvalidateUser(ctx, v.UserID)
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, notFoundOr(err, "Vehicle", id)
	}
	return &v, nil
}

func (r *vehicleRepository) ListByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&vehicles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return vehicles, nil
}

// Update writes the named columns of patch to the owner's vehicle.
func (r *vehicleRepository) Update(ctx context.Context, id, ownerID string, patch *models.Vehicle, columns []string) (*models.Vehicle, error) {
	if len(columns) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Vehicle{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Select(columns).
			Updates(patch)
		if res.Error != nil {
			return nil, models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("Vehicle", id)
		}
	}
	return r.getOwned(r.db.WithContext(ctx), id, ownerID)
}

func (r *vehicleRepository) Delete(ctx context.Context, id, ownerID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Vehicle{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Vehicle", id)
		}
		return decrement(tx, &models.User{}, "vehicles_count", "id = ?", ownerID)
	})
	if err != nil {
		return internal(err)
	}
	cache.InvalidateUser(ctx, ownerID)
	return nil
}

// AppendImage adds image to the end of the owner's vehicle image list under a row lock.
func (r *vehicleRepository) AppendImage(ctx context.Context, id, ownerID, image string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&v).Error; err != nil {
			return notFoundOr(err, "Vehicle", id)
		}
		v.Images = append(v.Images, image)
		return tx.Model(&v).Select("images").Updates(&models.Vehicle{Images: v.Images}).Error
	})
	if err != nil {
		return nil, internal(err)
	}
	return &v, nil
}

// Summaries resolves vehicle ids in one query; deleted vehicles are simply absent.
func (r *vehicleRepository) Summaries(ctx context.Context, ids []string) (map[string]*models.VehicleSummary, error) {
	out := make(map[string]*models.VehicleSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	defer observability.TrackQuery("batch", "vehicles")()

	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Select("id", "make", "model", "year", "type", "color").
		Where("id IN ?", ids).
		Find(&vehicles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range vehicles {
		out[vehicles[i].ID] = vehicles[i].Summary()
	}
	return out, nil
}

func (r *vehicleRepository) getOwned(db *gorm.DB, id, ownerID string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&v).Error; err != nil {
		return nil, notFoundOr(err, "Vehicle", id)
	}
	return &v, nil
}
