package repository

import (
	"construction-scheduler-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarRepository handles database operations for work calendars
type CalendarRepository struct {
	db *gorm.DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create creates a new work calendar
func (r *CalendarRepository) Create(cal *models.WorkCalendar) error {
	return r.db.Create(cal).Error
}

// GetByID retrieves a calendar by ID
func (r *CalendarRepository) GetByID(id uuid.UUID) (*models.WorkCalendar, error) {
	var cal models.WorkCalendar
	err := r.db.First(&cal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// GetWithExceptions retrieves a calendar with its exceptions preloaded
func (r *CalendarRepository) GetWithExceptions(id uuid.UUID) (*models.WorkCalendar, error) {
	var cal models.WorkCalendar
	err := r.db.Preload("Exceptions").First(&cal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// GetByProjectID retrieves all calendars of a project
func (r *CalendarRepository) GetByProjectID(projectID uuid.UUID) ([]models.WorkCalendar, error) {
	var cals []models.WorkCalendar
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&cals).Error
	if err != nil {
		return nil, err
	}
	return cals, nil
}

// Update updates a calendar
func (r *CalendarRepository) Update(cal *models.WorkCalendar) error {
	return r.db.Save(cal).Error
}

// Delete deletes a calendar and its exceptions
func (r *CalendarRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CalendarException{}, "calendar_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WorkCalendar{}, "id = ?", id).Error
	})
}

// AddException adds a date exception to a calendar
func (r *CalendarRepository) AddException(exc *models.CalendarException) error {
	return r.db.Create(exc).Error
}

// DeleteException removes a calendar exception
func (r *CalendarRepository) DeleteException(id uuid.UUID) error {
	return r.db.Delete(&models.CalendarException{}, "id = ?", id).Error
}
