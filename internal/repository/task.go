package repository

import (
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// GetByID retrieves a non-deleted task by ID
func (r *TaskRepository) GetByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByProjectID retrieves all non-deleted tasks of a project in WBS order
func (r *TaskRepository) GetByProjectID(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("project_id = ?", projectID).Order("sort_order ASC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetChildren retrieves the direct children of a task in WBS order
func (r *TaskRepository) GetChildren(parentID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("parent_id = ?", parentID).Order("sort_order ASC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves all fields of a task
func (r *TaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateFields applies a partial update to a task
func (r *TaskRepository) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete marks a task deleted. The row stays for baseline snapshots and
// change-log references.
func (r *TaskRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}

// ApplyCPMResults writes the computed dates, float and critical flags of an
// entire recompute back in one transaction, together with the change-log
// rows. No reader observes a mix of old and new CPM output across tasks.
func (r *TaskRepository) ApplyCPMResults(projectID uuid.UUID, updates []models.Task, changes []models.TaskChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range updates {
			u := &updates[i]
			err := tx.Model(&models.Task{}).Where("id = ? AND project_id = ?", u.ID, projectID).
				Updates(map[string]interface{}{
					"early_start":  u.EarlyStart,
					"early_finish": u.EarlyFinish,
					"late_start":   u.LateStart,
					"late_finish":  u.LateFinish,
					"total_float":  u.TotalFloat,
					"free_float":   u.FreeFloat,
					"is_critical":  u.IsCritical,
				}).Error
			if err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			if err := tx.Create(&changes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByProject counts the non-deleted tasks of a project
func (r *TaskRepository) CountByProject(projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}
