package fakeapi

import "github.com/kubecloudsinc/kci-client/internal/core/domain"

func ptr[T any](v T) *T { return &v }

// SampleEmployees returns a small HR-schema style employee list.
func SampleEmployees() []domain.Employee {
	return []domain.Employee{
		{
			EmployeeID:   ptr(100),
			FirstName:    ptr("Steven"),
			LastName:     ptr("King"),
			Email:        ptr("SKING"),
			Phone:        ptr("515.123.4567"),
			HireDate:     ptr("2003-06-17"),
			JobID:        ptr("AD_PRES"),
			Salary:       ptr(24000.0),
			DepartmentID: ptr(90),
		},
		{
			EmployeeID:   ptr(101),
			FirstName:    ptr("Neena"),
			LastName:     ptr("Kochhar"),
			Email:        ptr("NKOCHHAR"),
			Phone:        ptr("515.123.4568"),
			HireDate:     ptr("2005-09-21"),
			JobID:        ptr("AD_VP"),
			Salary:       ptr(17000.0),
			ManagerID:    ptr(100),
			DepartmentID: ptr(90),
		},
		{
			EmployeeID:    ptr(145),
			FirstName:     ptr("John"),
			LastName:      ptr("Russell"),
			Email:         ptr("JRUSSEL"),
			HireDate:      ptr("2004-10-01"),
			JobID:         ptr("SA_MAN"),
			Salary:        ptr(14000.0),
			CommissionPct: ptr(0.4),
			ManagerID:     ptr(100),
			DepartmentID:  ptr(80),
		},
	}
}

// SampleProfiles returns profiles for SampleEmployees.
func SampleProfiles() map[int]*domain.EmployeeProfile {
	region := &domain.Region{RegionID: ptr(2), RegionName: ptr("Americas")}
	country := &domain.Country{CountryID: ptr("US"), CountryName: ptr("United States of America"), Region: region}
	location := &domain.Location{
		LocationID:    ptr(1700),
		StreetAddress: ptr("2004 Charade Rd"),
		PostalCode:    ptr("98199"),
		City:          ptr("Seattle"),
		StateProvince: ptr("Washington"),
		Country:       country,
	}
	executive := &domain.Department{DepartmentID: ptr(90), DepartmentName: ptr("Executive"), Location: location}

	return map[int]*domain.EmployeeProfile{
		100: {
			EmployeeID: ptr(100),
			FirstName:  ptr("Steven"),
			LastName:   ptr("King"),
			Email:      ptr("SKING"),
			Phone:      ptr("515.123.4567"),
			Salary:     ptr(24000.0),
			JobDetails: &domain.JobDetails{
				Jobs: []*domain.Job{{
					JobID:          ptr("AD_PRES"),
					JobTitle:       ptr("President"),
					HireDate:       ptr("2003-06-17"),
					Salary:         ptr(24000.0),
					DepartmentID:   ptr(90),
					DepartmentName: ptr("Executive"),
				}},
				Department: executive,
			},
		},
		101: {
			EmployeeID: ptr(101),
			FirstName:  ptr("Neena"),
			LastName:   ptr("Kochhar"),
			Email:      ptr("NKOCHHAR"),
			Salary:     ptr(17000.0),
			ManagerID:  ptr(100),
			JobDetails: &domain.JobDetails{
				Jobs: []*domain.Job{{
					JobID:    ptr("AD_VP"),
					JobTitle: ptr("Administration Vice President"),
					HireDate: ptr("2005-09-21"),
					JobHistory: []*domain.JobHistory{{
						JobID:     ptr("AC_ACCOUNT"),
						JobTitle:  ptr("Public Accountant"),
						StartDate: ptr("1997-09-21"),
						EndDate:   ptr("2001-10-27"),
					}},
				}},
				Manager:    &domain.Manager{ManagerID: ptr(100), ManagerFirst: ptr("Steven"), ManagerLast: ptr("King")},
				Department: executive,
			},
		},
	}
}
