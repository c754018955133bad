/*
templates.go - Ready-made organisations for demos and quick starts

AVAILABLE TEMPLATES:

	startup:   Ranking method, 7 jobs, lean structure
	corporate: Point method, 18 jobs from CEO down to driver

HOW TEMPLATES WORK:
 1. The session takes the template's method and anchors
 2. Jobs are copied; point jobs are scored against the session's factor map
 3. Any existing grades are discarded

ADDING NEW TEMPLATES:
 1. Add a Template to the templates slice
 2. Give every point job a full set of factor selections
*/
package factory

import (
	"errors"
	"fmt"

	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

// ErrUnknownTemplate is returned for a template ID that does not exist.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a preset organisation.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Method      grading.Method  `json:"method"`
	Anchors     grading.Anchors `json:"anchors"`
	Jobs        []grading.Job   `json:"jobs"`
}

// JobsFor returns a copy of the template's jobs ready for a session using
// factor map m. Point jobs get their score from their selections.
func (t Template) JobsFor(m point.FactorMap) []grading.Job {
	if t.Method == grading.MethodPoint {
		return point.Rescore(t.Jobs, m)
	}
	out := make([]grading.Job, len(t.Jobs))
	for i, j := range t.Jobs {
		j.Factors = nil
		out[i] = j
	}
	return out
}

// Templates returns every template in display order.
func Templates() []Template {
	return []Template{startupTemplate(), corporateTemplate()}
}

// LookupTemplate finds a template by ID.
func LookupTemplate(id string) (Template, error) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
}

// =============================================================================
// TEMPLATE DEFINITIONS
// =============================================================================

func startupTemplate() Template {
	return Template{
		ID:          "startup",
		Name:        "Small Business / Startup",
		Description: "Ranking method. Lean structure.",
		Method:      grading.MethodRanking,
		Anchors:     grading.Anchors{MinMidpoint: 6_500_000, MaxMidpoint: 25_000_000},
		Jobs: []grading.Job{
			{ID: 1, Title: "CEO / Founder", Score: 1, Note: "Owner"},
			{ID: 2, Title: "Head of Tech", Score: 2, Note: "Product"},
			{ID: 3, Title: "Marketing Lead", Score: 3, Note: "Revenue"},
			{ID: 4, Title: "Sr. Developer", Score: 4, Note: "Engineering"},
			{ID: 5, Title: "Sales Exec", Score: 5, Note: "Sales"},
			{ID: 6, Title: "Jr. Developer", Score: 6, Note: "Support"},
			{ID: 7, Title: "Admin", Score: 7, Note: "Ops"},
		},
	}
}

func corporateTemplate() Template {
	return Template{
		ID:          "corporate",
		Name:        "Large Corporation",
		Description: "Point method. Full structure (18 positions).",
		Method:      grading.MethodPoint,
		Anchors:     grading.Anchors{MinMidpoint: 5_500_000, MaxMidpoint: 120_000_000},
		Jobs: []grading.Job{
			// Directors
			pointJob(1, "President Director (CEO)", 4, 5, 4, 4),
			pointJob(2, "Finance Director (CFO)", 4, 5, 4, 4),
			pointJob(3, "Operations Director (COO)", 4, 5, 4, 4),

			// VP and GM
			pointJob(4, "VP Human Resources", 4, 5, 4, 3),
			pointJob(5, "VP Sales & Marketing", 4, 5, 4, 3),
			pointJob(6, "General Manager IT", 4, 5, 3, 3),

			// Managers
			pointJob(7, "Senior Manager Finance", 3, 4, 3, 3),
			pointJob(8, "Manager HRBP", 3, 4, 3, 3),
			pointJob(9, "Manager Marketing", 3, 4, 2, 3),
			pointJob(10, "Assistant Manager Ops", 3, 3, 2, 2),

			// Supervisors and specialists
			pointJob(11, "Sr. Specialist Tax", 3, 4, 3, 1),
			pointJob(12, "Supervisor IT Support", 3, 3, 2, 2),
			pointJob(13, "Supervisor Accounting", 3, 3, 2, 2),

			// Staff
			pointJob(14, "Specialist Recruitment", 3, 2, 2, 1),
			pointJob(15, "Sales Officer", 2, 2, 1, 1),
			pointJob(16, "General Affair Officer", 2, 1, 1, 1),
			pointJob(17, "Admin Staff", 2, 1, 1, 1),
			pointJob(18, "Driver / Messenger", 1, 1, 1, 1),
		},
	}
}

func pointJob(id int, title string, education, experience, complexity, responsibility int) grading.Job {
	return grading.Job{
		ID:    id,
		Title: title,
		Factors: map[string]int{
			point.FactorEducation:      education,
			point.FactorExperience:     experience,
			point.FactorComplexity:     complexity,
			point.FactorResponsibility: responsibility,
		},
	}
}
