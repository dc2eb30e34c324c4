package domain

// Employee is one row of the protected employee list.
//
// Every field is optional: the API returns nulls for missing columns and
// the client does not validate beyond JSON decoding.
type Employee struct {
	EmployeeID    *int     `json:"employeeId"`
	FirstName     *string  `json:"firstName"`
	LastName      *string  `json:"lastName"`
	Email         *string  `json:"email,omitempty" table:"wide"`
	Phone         *string  `json:"phone,omitempty" table:"wide"`
	HireDate      *string  `json:"hireDate,omitempty" table:"wide"`
	JobID         *string  `json:"jobId,omitempty"`
	Salary        *float64 `json:"salary,omitempty" table:"wide"`
	CommissionPct *float64 `json:"commissionPct,omitempty" table:"wide"`
	ManagerID     *int     `json:"managerId,omitempty" table:"wide"`
	DepartmentID  *int     `json:"departmentId,omitempty"`
}

// DisplayName returns "First Last", skipping absent parts.
func (e Employee) DisplayName() string {
	first, last := deref(e.FirstName), deref(e.LastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// EmployeeProfile is the detailed view returned by GET /v2/employee/{id}.
type EmployeeProfile struct {
	EmployeeID    *int        `json:"employeeId"`
	FirstName     *string     `json:"firstName"`
	LastName      *string     `json:"lastName"`
	Email         *string     `json:"email"`
	Phone         *string     `json:"phone"`
	Salary        *float64    `json:"salary"`
	CommissionPct *float64    `json:"commissionPct,omitempty"`
	ManagerID     *int        `json:"managerId"`
	JobDetails    *JobDetails `json:"job_details,omitempty"`
}

// JobDetails groups a profile's jobs, manager and department.
type JobDetails struct {
	Jobs       []*Job      `json:"jobs"`
	Manager    *Manager    `json:"manager"`
	Department *Department `json:"department"`
}

// Job is a position held by the employee.
type Job struct {
	JobID          *string       `json:"jobId"`
	JobTitle       *string       `json:"jobTitle"`
	HireDate       *string       `json:"hireDate"`
	Salary         *float64      `json:"salary"`
	DepartmentID   *int          `json:"departmentId"`
	DepartmentName *string       `json:"departmentName"`
	JobHistory     []*JobHistory `json:"job_history"`
}

// JobHistory is a past assignment.
type JobHistory struct {
	JobID     *string `json:"jobId"`
	JobTitle  *string `json:"jobTitle"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// Manager identifies the employee's manager.
type Manager struct {
	ManagerID    *int    `json:"managerId"`
	ManagerFirst *string `json:"managerFirst"`
	ManagerLast  *string `json:"managerLast"`
}

// Department is the employee's department and its location.
type Department struct {
	DepartmentID   *int      `json:"departmentId"`
	DepartmentName *string   `json:"departmentName"`
	Location       *Location `json:"location"`
}

// Location is a department address.
type Location struct {
	LocationID    *int     `json:"locationId"`
	StreetAddress *string  `json:"streetAddress"`
	PostalCode    *string  `json:"postalCode"`
	City          *string  `json:"city"`
	StateProvince *string  `json:"stateProvince"`
	Country       *Country `json:"country"`
}

// Country of a location.
type Country struct {
	CountryID   *string `json:"countryId"`
	CountryName *string `json:"countryName"`
	Region      *Region `json:"region"`
}

// Region of a country.
type Region struct {
	RegionID   *int    `json:"regionId"`
	RegionName *string `json:"regionName"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
