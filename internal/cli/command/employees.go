package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/output"
	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

// EmployeesCommand returns the employees subcommand group.
func EmployeesCommand() *cli.Command {
	return &cli.Command{
		Name:    "employees",
		Aliases: []string{"emp"},
		Usage:   "Browse the employee directory",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List employees",
				Action:  employeesList,
			},
			{
				Name:      "get",
				Usage:     "Show an employee profile",
				ArgsUsage: "EMPLOYEE_ID",
				Action:    employeesGet,
			},
		},
	}
}

func employeesList(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	f, format, err := formatterFor(c, rt.Config)
	if err != nil {
		return err
	}

	employees, err := wait(c, "Loading employees", rt.Session.StartLoadEmployees(c.Context))
	if err != nil {
		return userError(err)
	}

	if len(employees) == 0 && isTableFormat(format) {
		fmt.Fprintln(stdout(c), "No employees found.")
		return nil
	}
	return f.Format(stdout(c), employees)
}

func employeesGet(c *cli.Context) error {
	arg := c.Args().First()
	if arg == "" {
		return userError(domain.ErrInvalidArgument.WithDetails("employee ID required"))
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return userError(domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("invalid employee ID %q", arg)))
	}

	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	f, format, err := formatterFor(c, rt.Config)
	if err != nil {
		return err
	}

	profile, err := rt.Session.LoadEmployeeProfile(c.Context, id)
	if err != nil {
		if domain.HTTPStatusOf(err) == 404 {
			return fmt.Errorf("employee %d not found", id)
		}
		return userError(err)
	}

	if isTableFormat(format) {
		return profileTable(profile).Render(stdout(c))
	}
	return f.Format(stdout(c), profile)
}

func isTableFormat(f output.Format) bool {
	return f == output.FormatTable || f == output.FormatWide
}

// profileTable flattens a profile into FIELD/VALUE rows.
func profileTable(p *domain.EmployeeProfile) *output.Table {
	t := &output.Table{}
	t.SetHeaders("FIELD", "VALUE")

	t.AddRow("ID", intOr(p.EmployeeID))
	t.AddRow("Name", joinNonEmpty(" ", strOr(p.FirstName), strOr(p.LastName)))
	t.AddRow("Email", strOr(p.Email))
	t.AddRow("Phone", strOr(p.Phone))
	t.AddRow("Salary", floatOr(p.Salary))
	if p.CommissionPct != nil {
		t.AddRow("Commission", floatOr(p.CommissionPct))
	}

	d := p.JobDetails
	if d == nil {
		return t
	}

	if m := d.Manager; m != nil {
		name := joinNonEmpty(" ", strOr(m.ManagerFirst), strOr(m.ManagerLast))
		if m.ManagerID != nil {
			name = fmt.Sprintf("%s (%d)", name, *m.ManagerID)
		}
		t.AddRow("Manager", name)
	}

	if dept := d.Department; dept != nil {
		t.AddRow("Department", strOr(dept.DepartmentName))
		if loc := dept.Location; loc != nil {
			parts := []string{strOr(loc.StreetAddress), strOr(loc.City), strOr(loc.StateProvince), strOr(loc.PostalCode)}
			var region *domain.Region
			if ctry := loc.Country; ctry != nil {
				parts = append(parts, strOr(ctry.CountryName))
				region = ctry.Region
			}
			t.AddRow("Location", joinNonEmpty(", ", parts...))
			if region != nil {
				t.AddRow("Region", strOr(region.RegionName))
			}
		}
	}

	for i, job := range d.Jobs {
		if job == nil {
			continue
		}
		label := "Job"
		if i > 0 {
			label = ""
		}
		desc := strOr(job.JobTitle)
		if job.JobID != nil {
			desc += " (" + *job.JobID + ")"
		}
		if job.HireDate != nil {
			desc += " since " + *job.HireDate
		}
		t.AddRow(label, desc)
		for _, h := range job.JobHistory {
			if h == nil {
				continue
			}
			t.AddRow("", fmt.Sprintf("  was %s %s..%s", strOr(h.JobTitle), strOr(h.StartDate), strOr(h.EndDate)))
		}
	}

	return t
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOr(i *int) string {
	if i == nil {
		return "-"
	}
	return strconv.Itoa(*i)
}

func floatOr(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "-"
	}
	return strings.Join(kept, sep)
}
