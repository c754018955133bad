package point

// DefaultFactors returns the standard four-factor evaluation scheme.
func DefaultFactors() FactorMap {
	return FactorMap{
		Version: 1,
		Order:   []string{FactorEducation, FactorExperience, FactorComplexity, FactorResponsibility},
		Factors: map[string]FactorDefinition{
			FactorEducation: {
				ID:    FactorEducation,
				Label: "Education",
				Options: []FactorOption{
					{Value: 1, Label: "High school / vocational", Score: 50},
					{Value: 2, Label: "Diploma (D3)", Score: 100},
					{Value: 3, Label: "Bachelor (S1)", Score: 150},
					{Value: 4, Label: "Postgraduate (S2/S3)", Score: 200},
				},
			},
			FactorExperience: {
				ID:    FactorExperience,
				Label: "Experience",
				Options: []FactorOption{
					{Value: 1, Label: "< 1 year", Score: 20},
					{Value: 2, Label: "1 - 3 years", Score: 60},
					{Value: 3, Label: "3 - 5 years", Score: 100},
					{Value: 4, Label: "5 - 10 years", Score: 160},
					{Value: 5, Label: "> 10 years", Score: 220},
				},
			},
			FactorComplexity: {
				ID:    FactorComplexity,
				Label: "Task complexity",
				Options: []FactorOption{
					{Value: 1, Label: "Routine", Score: 50},
					{Value: 2, Label: "Varied", Score: 100},
					{Value: 3, Label: "Complex", Score: 180},
					{Value: 4, Label: "Strategic", Score: 250},
				},
			},
			FactorResponsibility: {
				ID:    FactorResponsibility,
				Label: "Responsibility",
				Options: []FactorOption{
					{Value: 1, Label: "Staff", Score: 50},
					{Value: 2, Label: "Supervisor", Score: 120},
					{Value: 3, Label: "Manager", Score: 220},
					{Value: 4, Label: "Director", Score: 350},
				},
			},
		},
	}
}

const (
	FactorEducation      = "education"
	FactorExperience     = "experience"
	FactorComplexity     = "complexity"
	FactorResponsibility = "responsibility"
)
