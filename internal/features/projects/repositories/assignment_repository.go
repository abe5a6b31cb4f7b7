package projects_repositories

import (
	"errors"
	"time"

	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/realtime"
	"timebridge/internal/storage"
	"timebridge/internal/util/app_errors"

	"gorm.io/gorm"
)

type AssignmentRepository struct{}

func (r *AssignmentRepository) CreateAssignment(assignment *projects_models.ProjectAssignment) error {
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	if err := storage.GetDb().Create(assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return app_errors.NewConflictError(
				"subcontractor %s is already assigned to project %s",
				assignment.SubcontractorID, assignment.ProjectID,
			)
		}

		return err
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, assignment.ProjectID)
	return nil
}

func (r *AssignmentRepository) GetAssignment(
	projectID, subcontractorID string,
) (*projects_models.ProjectAssignment, error) {
	var assignment projects_models.ProjectAssignment

	err := storage.GetDb().
		Where("project_id = ? AND subcontractor_id = ?", projectID, subcontractorID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_errors.NewNotFoundError("assignment", projectID+"/"+subcontractorID)
		}

		return nil, err
	}

	return &assignment, nil
}

func (r *AssignmentRepository) UpdateAssignment(assignment *projects_models.ProjectAssignment) error {
	result := storage.GetDb().
		Model(&projects_models.ProjectAssignment{}).
		Where("project_id = ? AND subcontractor_id = ?", assignment.ProjectID, assignment.SubcontractorID).
		Updates(map[string]any{
			"hours_cap": assignment.HoursCap,
			"period":    assignment.Period,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return app_errors.NewNotFoundError("assignment", assignment.ProjectID+"/"+assignment.SubcontractorID)
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, assignment.ProjectID)
	return nil
}

func (r *AssignmentRepository) DeleteAssignment(projectID, subcontractorID string) error {
	result := storage.GetDb().
		Where("project_id = ? AND subcontractor_id = ?", projectID, subcontractorID).
		Delete(&projects_models.ProjectAssignment{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return app_errors.NewNotFoundError("assignment", projectID+"/"+subcontractorID)
	}

	realtime.GetNotifier().Notify(realtime.CollectionProjects, realtime.OperationUpsert, projectID)
	return nil
}

func (r *AssignmentRepository) DeleteAssignmentsOfSubcontractor(subcontractorID string) error {
	return storage.GetDb().
		Where("subcontractor_id = ?", subcontractorID).
		Delete(&projects_models.ProjectAssignment{}).Error
}
