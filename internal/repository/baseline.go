package repository

import (
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaselineRepository handles database operations for baselines and their
// frozen task snapshots
type BaselineRepository struct {
	db *gorm.DB
}

// NewBaselineRepository creates a new baseline repository
func NewBaselineRepository(db *gorm.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// CreateWithTasks persists a baseline, its snapshot rows and the active-flag
// handover in one transaction. Either the whole capture lands or none of it.
func (r *BaselineRepository) CreateWithTasks(baseline *models.Baseline, tasks []models.BaselineTask) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Baseline{}).
			Where("project_id = ? AND is_active = ?", baseline.ProjectID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(baseline).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].BaselineID = baseline.ID
		}
		if len(tasks) > 0 {
			if err := tx.CreateInBatches(&tasks, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a baseline by ID
func (r *BaselineRepository) GetByID(id uuid.UUID) (*models.Baseline, error) {
	var baseline models.Baseline
	err := r.db.First(&baseline, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &baseline, nil
}

// GetByProjectID retrieves all baselines of a project, newest first
func (r *BaselineRepository) GetByProjectID(projectID uuid.UUID) ([]models.Baseline, error) {
	var baselines []models.Baseline
	err := r.db.Where("project_id = ?", projectID).Order("baseline_number DESC").Find(&baselines).Error
	if err != nil {
		return nil, err
	}
	return baselines, nil
}

// GetActive retrieves the project's active baseline
func (r *BaselineRepository) GetActive(projectID uuid.UUID) (*models.Baseline, error) {
	var baseline models.Baseline
	err := r.db.First(&baseline, "project_id = ? AND is_active = ?", projectID, true).Error
	if err != nil {
		return nil, err
	}
	return &baseline, nil
}

// GetTasks retrieves the snapshot rows of a baseline
func (r *BaselineRepository) GetTasks(baselineID uuid.UUID) ([]models.BaselineTask, error) {
	var tasks []models.BaselineTask
	err := r.db.Where("baseline_id = ?", baselineID).Order("task_name ASC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByProject counts the live baselines of a project
func (r *BaselineRepository) CountByProject(projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Baseline{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// MaxNumber returns the highest baseline number ever used in the project.
// Numbers of deleted baselines are not reused.
func (r *BaselineRepository) MaxNumber(projectID uuid.UUID) (int, error) {
	var max *int
	err := r.db.Model(&models.Baseline{}).
		Where("project_id = ?", projectID).
		Select("MAX(baseline_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// SetActive makes the given baseline the project's single active one
func (r *BaselineRepository) SetActive(projectID, baselineID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Baseline{}).
			Where("project_id = ? AND is_active = ?", projectID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Baseline{}).
			Where("id = ? AND project_id = ?", baselineID, projectID).
			Update("is_active", true).Error
	})
}

// Delete removes a baseline and its snapshot rows
func (r *BaselineRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.BaselineTask{}, "baseline_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Baseline{}, "id = ?", id).Error
	})
}
