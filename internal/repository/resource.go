package repository

import (
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceRepository handles database operations for resources and their
// task assignments
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create creates a new resource
func (r *ResourceRepository) Create(resource *models.Resource) error {
	return r.db.Create(resource).Error
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.First(&resource, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// GetByProjectID retrieves all resources of a project
func (r *ResourceRepository) GetByProjectID(projectID uuid.UUID) ([]models.Resource, error) {
	var resources []models.Resource
	err := r.db.Where("project_id = ?", projectID).Order("name ASC").Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// Update updates a resource
func (r *ResourceRepository) Update(resource *models.Resource) error {
	return r.db.Save(resource).Error
}

// Delete deletes a resource and its assignments
func (r *ResourceRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TaskResourceAssignment{}, "resource_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Resource{}, "id = ?", id).Error
	})
}

// CreateAssignment creates a new task-resource assignment
func (r *ResourceRepository) CreateAssignment(assignment *models.TaskResourceAssignment) error {
	return r.db.Create(assignment).Error
}

// GetAssignment retrieves an assignment by ID
func (r *ResourceRepository) GetAssignment(id uuid.UUID) (*models.TaskResourceAssignment, error) {
	var assignment models.TaskResourceAssignment
	err := r.db.First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetAssignmentsByTask retrieves all assignments of a task
func (r *ResourceRepository) GetAssignmentsByTask(taskID uuid.UUID) ([]models.TaskResourceAssignment, error) {
	var assignments []models.TaskResourceAssignment
	err := r.db.Where("task_id = ?", taskID).Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetAssignmentsByProject retrieves every assignment whose task belongs to
// the project, with the resource preloaded for leveling
func (r *ResourceRepository) GetAssignmentsByProject(projectID uuid.UUID) ([]models.TaskResourceAssignment, error) {
	var assignments []models.TaskResourceAssignment
	err := r.db.
		Joins("JOIN tasks ON tasks.id = task_resource_assignments.task_id").
		Where("tasks.project_id = ? AND tasks.deleted_at IS NULL", projectID).
		Preload("Resource").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// AssignmentExists checks whether the task already carries this resource
func (r *ResourceRepository) AssignmentExists(taskID, resourceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskResourceAssignment{}).
		Where("task_id = ? AND resource_id = ?", taskID, resourceID).
		Count(&count).Error
	return count > 0, err
}

// UpdateAssignment updates an assignment
func (r *ResourceRepository) UpdateAssignment(assignment *models.TaskResourceAssignment) error {
	return r.db.Save(assignment).Error
}

// DeleteAssignment removes an assignment
func (r *ResourceRepository) DeleteAssignment(id uuid.UUID) error {
	return r.db.Delete(&models.TaskResourceAssignment{}, "id = ?", id).Error
}
