package dataset

import "github.com/loomhr/loom/pkg/types"

// HR column names referenced throughout the pipeline.
const (
	ColEmployeeNumber  = "EmployeeNumber"
	ColAttrition       = "Attrition"
	ColHireDate        = "HireDate"
	ColTerminationDate = "TerminationDate"
)

// DateColumns are the HR columns parsed as dates at load time. The
// termination date is permissibly empty for open-ended employment.
var DateColumns = []string{ColHireDate, ColTerminationDate}

// HRSchema returns the canonical employee dataset schema. It is constructed
// once at process start and treated as immutable configuration.
func HRSchema() *types.Schema {
	return &types.Schema{
		Version:    "1.0.0",
		PrimaryKey: ColEmployeeNumber,
		Columns: []types.ColumnSpec{
			{
				Name:        ColEmployeeNumber,
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Unique identifier for each employee",
				MinValue:    types.Float64(1),
			},
			{
				Name:        "Age",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Employee age",
				MinValue:    types.Float64(18),
				MaxValue:    types.Float64(100),
			},
			{
				Name:        "Department",
				Kind:        types.KindText,
				Required:    true,
				Description: "Employee department",
				AllowedValues: []any{
					"IT", "HR", "Finance", "Marketing",
					"Operations", "Sales", "Research", "Engineering",
				},
			},
			{
				Name:        "JobRole",
				Kind:        types.KindText,
				Required:    true,
				Description: "Employee job role",
				AllowedValues: []any{
					"Developer", "Engineer", "System Administrator", "IT Manager", "Technical Specialist",
					"HR Manager", "HR Specialist", "Recruiter", "HR Director",
					"Financial Analyst", "Accountant", "Finance Manager", "Controller",
					"Marketing Specialist", "Marketing Manager", "Brand Manager", "Marketing Director",
					"Operations Manager", "Operations Specialist", "Supply Chain Manager",
					"Sales Representative", "Sales Manager", "Account Executive", "Sales Director",
					"Research Scientist", "Research Analyst", "Research Director",
					"Senior Engineer", "Engineering Manager", "Technical Director",
				},
			},
			{
				Name:        "Salary",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Annual salary",
				MinValue:    types.Float64(0),
			},
			{
				Name:        "YearsAtCompany",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Years of employment",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(50),
			},
			{
				Name:        "JobSatisfaction",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Job satisfaction score",
				MinValue:    types.Float64(1),
				MaxValue:    types.Float64(5),
			},
			{
				Name:        "WorkLifeBalance",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Work-life balance score",
				MinValue:    types.Float64(1),
				MaxValue:    types.Float64(5),
			},
			{
				Name:        "PerformanceRating",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Performance rating",
				MinValue:    types.Float64(1),
				MaxValue:    types.Float64(5),
			},
			{
				Name:          ColAttrition,
				Kind:          types.KindText,
				Required:      true,
				Description:   "Whether the employee left the company",
				AllowedValues: []any{"Yes", "No"},
			},
			{
				Name:        ColHireDate,
				Kind:        types.KindDateTime,
				Required:    true,
				Description: "Employee hire date",
			},
			{
				Name:        ColTerminationDate,
				Kind:        types.KindDateTime,
				Required:    false,
				Description: "Employee termination date",
			},
			{
				Name:        "Education",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Education level",
				MinValue:    types.Float64(1),
				MaxValue:    types.Float64(5),
			},
			{
				Name:        "EducationField",
				Kind:        types.KindText,
				Required:    true,
				Description: "Field of education",
				AllowedValues: []any{
					"Life Sciences", "Medical", "Marketing",
					"Technical Degree", "Other", "Human Resources",
				},
			},
			{
				Name:          "Gender",
				Kind:          types.KindText,
				Required:      true,
				Description:   "Employee gender",
				AllowedValues: []any{"Male", "Female"},
			},
			{
				Name:          "MaritalStatus",
				Kind:          types.KindText,
				Required:      true,
				Description:   "Employee marital status",
				AllowedValues: []any{"Single", "Married", "Divorced"},
			},
			{
				Name:        "NumCompaniesWorked",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Number of companies worked at",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(20),
			},
			{
				Name:        "TotalWorkingYears",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Total years of work experience",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(50),
			},
			{
				Name:        "TrainingTimesLastYear",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Number of training sessions attended last year",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(10),
			},
			{
				Name:        "YearsInCurrentRole",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Years in current role",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(50),
			},
			{
				Name:        "YearsSinceLastPromotion",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Years since last promotion",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(50),
			},
			{
				Name:        "YearsWithCurrManager",
				Kind:        types.KindInteger,
				Required:    true,
				Description: "Years with current manager",
				MinValue:    types.Float64(0),
				MaxValue:    types.Float64(50),
			},
		},
	}
}
