package projects_repositories

import (
	"errors"
	"fmt"
	"time"

	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct{}

func (r *ProjectRepository) CreateProject(project *projects_models.Project) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	for i := range project.Assignments {
		project.Assignments[i].ProjectID = project.ID
		if project.Assignments[i].CreatedAt.IsZero() {
			project.Assignments[i].CreatedAt = project.CreatedAt
		}
	}

	if err := storage.GetDb().Create(project).Error; err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, project.ID)
	return nil
}

func (r *ProjectRepository) GetProjectByID(projectID string) (*projects_models.Project, error) {
	var project projects_models.Project

	err := storage.GetDb().
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", projectID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("project", projectID)
		}

		return nil, err
	}

	return &project, nil
}

func (r *ProjectRepository) ProjectExists(projectID string) (bool, error) {
	var count int64

	if err := storage.GetDb().Model(&projects_models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *ProjectRepository) UpdateProject(project *projects_models.Project) error {
	err := storage.GetDb().
		Model(&projects_models.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]any{
			"name":       project.Name,
			"client":     project.Client,
			"budget":     project.Budget,
			"currency":   project.Currency,
			"manager_id": project.ManagerID,
		}).Error
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, project.ID)
	return nil
}

func (r *ProjectRepository) DeleteProject(projectID string) error {
	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&projects_models.ProjectAssignment{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", projectID).Delete(&projects_models.Project{}).Error
	})
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationDelete, projectID)
	return nil
}

func (r *ProjectRepository) GetAllProjects() ([]*projects_models.Project, error) {
	projects := make([]*projects_models.Project, 0)

	err := storage.GetDb().
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("name ASC").
		Find(&projects).Error

	return projects, err
}

func (r *ProjectRepository) GetProjectsAssignedTo(subcontractorID string) ([]*projects_models.Project, error) {
	projects := make([]*projects_models.Project, 0)

	err := storage.GetDb().
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id IN (?)", storage.GetDb().
			Model(&projects_models.ProjectAssignment{}).
			Select("project_id").
			Where("subcontractor_id = ?", subcontractorID)).
		Order("name ASC").
		Find(&projects).Error

	return projects, err
}

// UpsertFromSync writes a project imported from the HR system at its
// deterministic id. With preserveLocal only the externally owned columns are
// refreshed; otherwise the record is overwritten and its assignments dropped.
func (r *ProjectRepository) UpsertFromSync(project *projects_models.Project, preserveLocal bool) error {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	updateColumns := []string{"name", "client"}
	if !preserveLocal {
		updateColumns = append(updateColumns, "budget", "currency", "manager_id")
	}

	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(updateColumns),
			}).
			Create(project).Error
		if err != nil {
			return err
		}

		if preserveLocal {
			return nil
		}

		return tx.Where("project_id = ?", project.ID).Delete(&projects_models.ProjectAssignment{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", project.ID, err)
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, project.ID)
	return nil
}

func (r *ProjectRepository) DeleteAll() error {
	err := storage.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&projects_models.ProjectAssignment{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&projects_models.Project{}).Error
	})
	if err != nil {
		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationDeleteAll, "")
	return nil
}
