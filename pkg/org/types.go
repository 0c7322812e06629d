package org

// RelationshipType classifies how the sender relates to the recipient.
type RelationshipType string

const (
	RelationshipManager     RelationshipType = "manager"
	RelationshipSubordinate RelationshipType = "subordinate"
	RelationshipPeer        RelationshipType = "peer"
)

// User is one person in an organizational export. ReportsTo and Department
// may reference other records by name or by ID; normalization resolves them.
type User struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Email                   string   `json:"email,omitempty"`
	Title                   string   `json:"title,omitempty"`
	Department              string   `json:"department,omitempty"`
	Team                    string   `json:"team,omitempty"`
	ReportsTo               string   `json:"reports_to,omitempty"`
	SecurityClearance       string   `json:"security_clearance,omitempty"`
	EmergencyAuthorizations []string `json:"emergency_authorizations,omitempty"`
}

// Department is one department in an organizational export.
type Department struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	DepartmentHead     string `json:"department_head,omitempty"`
	DataClassification string `json:"data_classification,omitempty"`
}

// Project is one project in an organizational export. TeamMembers may be
// names or IDs.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status,omitempty"`
	ProjectLead string   `json:"project_lead,omitempty"`
	Department  string   `json:"department,omitempty"`
	TeamMembers []string `json:"team_members,omitempty"`
}

// Export is the raw snapshot shape accepted from external tooling.
type Export struct {
	Users       []User       `json:"users"`
	Departments []Department `json:"departments"`
	Projects    []Project    `json:"projects"`
}

// normalizedUser is a user with cross-references resolved to IDs.
type normalizedUser struct {
	User
	ManagerID    string
	DepartmentID string
}

// normalizedProject is a project with member references resolved to IDs
// where possible.
type normalizedProject struct {
	Project
	TeamMemberIDs []string
	ProjectLeadID string
}

// Snapshot is a normalized, ID-keyed view of one export, plus the warnings
// produced while resolving cross-references.
type Snapshot struct {
	Users       map[string]normalizedUser
	Departments map[string]Department
	Projects    map[string]normalizedProject
	Warnings    []string
}

// OrgContext describes the organizational relationship between a sender and
// a recipient at lookup time.
type OrgContext struct {
	SenderDepartment        string
	RecipientDepartment     string
	RelationshipType        RelationshipType
	OrganizationalDistance  int
	SenderClearance         string
	RecipientClearance      string
	EmergencyAuthorizations []string
	SharedProjects          []string
}
