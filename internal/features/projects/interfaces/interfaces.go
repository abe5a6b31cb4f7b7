package projects_interfaces

type ProjectDeletionListener interface {
	OnBeforeProjectDeletion(projectID string) error
}

type SubcontractorExistenceChecker interface {
	SubcontractorExists(subcontractorID string) (bool, error)
}
