package repository

import (
	"time"

	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskChangeRepository handles the append-only change log. There are no
// update or delete operations on purpose.
type TaskChangeRepository struct {
	db *gorm.DB
}

// NewTaskChangeRepository creates a new task change repository
func NewTaskChangeRepository(db *gorm.DB) *TaskChangeRepository {
	return &TaskChangeRepository{db: db}
}

// Create appends a single change row
func (r *TaskChangeRepository) Create(change *models.TaskChange) error {
	return r.db.Create(change).Error
}

// CreateBatch appends many change rows at once
func (r *TaskChangeRepository) CreateBatch(changes []models.TaskChange) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&changes, 100).Error
}

// GetByTaskID retrieves a task's change history, newest first
func (r *TaskChangeRepository) GetByTaskID(taskID uuid.UUID, limit, offset int) ([]models.TaskChange, int64, error) {
	var changes []models.TaskChange
	var total int64

	query := r.db.Model(&models.TaskChange{}).Where("task_id = ?", taskID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&changes).Error
	if err != nil {
		return nil, 0, err
	}

	return changes, total, nil
}

// GetByProjectID retrieves a project's change history, newest first
func (r *TaskChangeRepository) GetByProjectID(projectID uuid.UUID, limit, offset int) ([]models.TaskChange, int64, error) {
	var changes []models.TaskChange
	var total int64

	query := r.db.Model(&models.TaskChange{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&changes).Error
	if err != nil {
		return nil, 0, err
	}

	return changes, total, nil
}

// LatestByType retrieves the most recent change of a given type in the
// project. Used by the CPM debounce.
func (r *TaskChangeRepository) LatestByType(projectID uuid.UUID, changeType models.ChangeType) (*models.TaskChange, error) {
	var change models.TaskChange
	err := r.db.Where("project_id = ? AND change_type = ?", projectID, changeType).
		Order("created_at DESC").
		First(&change).Error
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// CountSince counts changes of a type recorded after the given instant
func (r *TaskChangeRepository) CountSince(projectID uuid.UUID, changeType models.ChangeType, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskChange{}).
		Where("project_id = ? AND change_type = ? AND created_at > ?", projectID, changeType, since).
		Count(&count).Error
	return count, err
}
