package org

import "fmt"

// Normalize validates an export and resolves its name cross-references to
// IDs. Missing mandatory id fields are fatal; unresolved links (an unknown
// manager, a project member not present among users) are tolerated and
// reported as warnings on the snapshot.
func Normalize(export Export) (*Snapshot, error) {
	var errs []string

	for _, u := range export.Users {
		if u.ID == "" {
			errs = append(errs, fmt.Sprintf("user %q missing id", u.Name))
		}
	}
	for _, d := range export.Departments {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("department %q missing id", d.Name))
		}
	}
	for _, p := range export.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("project %q missing id", p.Name))
		}
	}
	if len(errs) > 0 {
		return nil, &ImportError{Errors: errs}
	}

	snapshot := &Snapshot{
		Users:       make(map[string]normalizedUser, len(export.Users)),
		Departments: make(map[string]Department, len(export.Departments)),
		Projects:    make(map[string]normalizedProject, len(export.Projects)),
	}

	nameToID := make(map[string]string, len(export.Users))
	for _, u := range export.Users {
		if u.Name != "" {
			nameToID[u.Name] = u.ID
		}
	}

	deptByName := make(map[string]string, len(export.Departments))
	for _, d := range export.Departments {
		snapshot.Departments[d.ID] = d
		if d.Name != "" {
			deptByName[d.Name] = d.ID
		}
	}

	for _, u := range export.Users {
		nu := normalizedUser{User: u}

		if u.Department != "" {
			if id, ok := deptByName[u.Department]; ok {
				nu.DepartmentID = id
			} else if _, ok := snapshot.Departments[u.Department]; ok {
				nu.DepartmentID = u.Department
			} else {
				snapshot.Warnings = append(snapshot.Warnings,
					fmt.Sprintf("user %s department %q not found among departments", u.ID, u.Department))
			}
		} else {
			snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("user %s missing department", u.ID))
		}

		if u.ReportsTo != "" {
			if id, ok := nameToID[u.ReportsTo]; ok {
				nu.ManagerID = id
			} else {
				// Assume it is already an ID; verified below.
				nu.ManagerID = u.ReportsTo
			}
		}

		snapshot.Users[u.ID] = nu
	}

	// Manager references must point at known users.
	for id, u := range snapshot.Users {
		if u.ManagerID != "" {
			if _, ok := snapshot.Users[u.ManagerID]; !ok {
				snapshot.Warnings = append(snapshot.Warnings,
					fmt.Sprintf("user %s manager %q not found among users", id, u.ManagerID))
			}
		}
	}

	for _, p := range export.Projects {
		np := normalizedProject{Project: p}

		for _, member := range p.TeamMembers {
			if id, ok := nameToID[member]; ok {
				np.TeamMemberIDs = append(np.TeamMemberIDs, id)
				continue
			}
			if _, ok := snapshot.Users[member]; ok {
				np.TeamMemberIDs = append(np.TeamMemberIDs, member)
				continue
			}
			snapshot.Warnings = append(snapshot.Warnings,
				fmt.Sprintf("project %s member %q not present among users, keeping as-is", p.ID, member))
			np.TeamMemberIDs = append(np.TeamMemberIDs, member)
		}

		if p.ProjectLead != "" {
			if id, ok := nameToID[p.ProjectLead]; ok {
				np.ProjectLeadID = id
			} else {
				np.ProjectLeadID = p.ProjectLead
			}
		}

		snapshot.Projects[p.ID] = np
	}

	return snapshot, nil
}
