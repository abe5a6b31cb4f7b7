package factorial

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	EmployeeIDPrefix = "fac_emp_"
	ProjectIDPrefix  = "fac_proj_"
	TimeLogIDPrefix  = "fac_log_"

	// DefaultProjectID collects imported time entries whose project is not
	// known locally.
	DefaultProjectID   = "fac_default_project"
	DefaultProjectName = "Factorial Import"

	defaultEmployeeRole = "Factorial Employee"
	defaultClientName   = "Factorial Import"
)

// RemoteID accepts both numeric and string identifiers.
type RemoteID string

func (id *RemoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}

		*id = RemoteID(strings.TrimSpace(value))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}

	*id = RemoteID(number.String())
	return nil
}

type Employee struct {
	ID             RemoteID `json:"id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	Identifier     string   `json:"identifier"`
	EmployeeNumber string   `json:"employee_number"`
	ManagerEmail   string   `json:"manager_email"`
}

func (e *Employee) DisplayName() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if name == "" {
		name = strings.TrimSpace(e.FullName)
	}
	if name == "" {
		name = e.Email
	}

	return name
}

type Project struct {
	ID         RemoteID `json:"id"`
	Name       string   `json:"name"`
	ClientName string   `json:"client_name"`
}

// Shift is one attendance entry. Hours come from Start/End when both are
// set, otherwise from Minutes.
type Shift struct {
	ID           RemoteID `json:"id"`
	EmployeeID   RemoteID `json:"employee_id"`
	ProjectID    RemoteID `json:"project_id"`
	Date         string   `json:"date"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Minutes      *float64 `json:"minutes"`
	Observations string   `json:"observations"`
}

func EmployeeDocumentID(id RemoteID) string {
	return EmployeeIDPrefix + string(id)
}

func ProjectDocumentID(id RemoteID) string {
	return ProjectIDPrefix + string(id)
}

func TimeLogDocumentID(id RemoteID) string {
	return TimeLogIDPrefix + string(id)
}
