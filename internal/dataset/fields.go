package dataset

import "strings"

// Field identifies one attribute of an employee record.
type Field string

const (
	Satisfaction Field = "satisfaction_level"    // continuous, 0-1
	Evaluation   Field = "last_evaluation"       // continuous, 0-1
	Projects     Field = "number_project"        // concurrent projects
	Hours        Field = "average_monthly_hours" // average monthly hours worked
	Tenure       Field = "time_spend_company"    // years at the company
	Accident     Field = "Work_accident"         // 0/1
	Promotion    Field = "promotion_last_5years" // 0/1
	Department   Field = "Department"            // unordered category
	Salary       Field = "salary"                // low < medium < high
	Left         Field = "left"                  // 0/1 target
)

// aliases are the accepted headers per field, canonical name first.
var aliases = map[Field][]string{
	Satisfaction: {"satisfaction_level", "satisfaction"},
	Evaluation:   {"last_evaluation", "evaluation"},
	Projects:     {"number_project", "number_projects", "projects"},
	Hours:        {"average_monthly_hours", "average_montly_hours", "avg_monthly_hours"},
	Tenure:       {"time_spend_company", "tenure", "years_at_company"},
	Accident:     {"Work_accident", "work_accident"},
	Promotion:    {"promotion_last_5years", "promotion"},
	Department:   {"Department", "department", "sales", "dept"},
	Salary:       {"salary", "salary_tier"},
	Left:         {"left", "attrition"},
}

// Aliases returns the accepted headers for f, canonical name first.
func (f Field) Aliases() []string {
	if a, ok := aliases[f]; ok {
		return a
	}
	return []string{string(f)}
}

// pickColumn returns the first alias of f present in names. Exact matches are
// preferred; a case-insensitive match is the fallback.
func pickColumn(names []string, f Field) (string, bool) {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	for _, a := range f.Aliases() {
		if set[a] {
			return a, true
		}
	}
	for _, a := range f.Aliases() {
		for _, n := range names {
			if strings.EqualFold(a, n) {
				return n, true
			}
		}
	}
	return "", false
}

// SalaryTier is the ordered salary band.
type SalaryTier int

const (
	SalaryUnknown SalaryTier = iota
	SalaryLow
	SalaryMedium
	SalaryHigh
)

// ParseSalaryTier maps "low", "medium" and "high" (any case) to a tier.
func ParseSalaryTier(s string) (SalaryTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SalaryLow, true
	case "medium":
		return SalaryMedium, true
	case "high":
		return SalaryHigh, true
	}
	return SalaryUnknown, false
}

// Rank orders tiers low < medium < high; unknown values sort last.
func (t SalaryTier) Rank() int {
	if t == SalaryUnknown {
		return int(SalaryHigh) + 1
	}
	return int(t)
}

func (t SalaryTier) String() string {
	switch t {
	case SalaryLow:
		return "low"
	case SalaryMedium:
		return "medium"
	case SalaryHigh:
		return "high"
	}
	return "unknown"
}
