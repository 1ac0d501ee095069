package repository

import (
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DependencyRepository handles database operations for dependencies
type DependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new dependency repository
func NewDependencyRepository(db *gorm.DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// Create creates a new dependency
func (r *DependencyRepository) Create(dep *models.Dependency) error {
	return r.db.Create(dep).Error
}

// GetByID retrieves a dependency by ID
func (r *DependencyRepository) GetByID(id uuid.UUID) (*models.Dependency, error) {
	var dep models.Dependency
	err := r.db.First(&dep, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

// GetByProjectID retrieves all live dependencies of a project
func (r *DependencyRepository) GetByProjectID(projectID uuid.UUID) ([]models.Dependency, error) {
	var deps []models.Dependency
	err := r.db.Where("project_id = ?", projectID).Find(&deps).Error
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// GetByTaskID retrieves every dependency touching a task, in either role
func (r *DependencyRepository) GetByTaskID(taskID uuid.UUID) ([]models.Dependency, error) {
	var deps []models.Dependency
	err := r.db.Where("predecessor_id = ? OR successor_id = ?", taskID, taskID).Find(&deps).Error
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// Exists checks whether a live edge between the two tasks already exists
func (r *DependencyRepository) Exists(predecessorID, successorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Dependency{}).
		Where("predecessor_id = ? AND successor_id = ?", predecessorID, successorID).
		Count(&count).Error
	return count > 0, err
}

// SoftDelete marks a dependency deleted
func (r *DependencyRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&models.Dependency{}, "id = ?", id).Error
}
