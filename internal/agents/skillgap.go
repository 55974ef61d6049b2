package agents

import (
	"regexp"
	"sort"
	"strings"
)

// RoleSkills maps each job role to its required skills.
var RoleSkills = map[string][]string{
	"Developer":             {"Python", "SQL", "Git", "Agile", "Testing"},
	"Engineer":              {"Python", "SQL", "System Design", "Problem Solving"},
	"System Administrator":  {"Linux", "Networking", "Security", "Cloud"},
	"IT Manager":            {"Project Management", "Leadership", "IT Strategy", "Budgeting"},
	"Technical Specialist":  {"Technical Writing", "Problem Solving", "Documentation"},
	"HR Manager":            {"Recruitment", "Employee Relations", "HR Policies", "Leadership"},
	"HR Specialist":         {"Recruitment", "Employee Relations", "HR Policies"},
	"Recruiter":             {"Talent Acquisition", "Interviewing", "ATS", "Communication"},
	"HR Director":           {"Strategic Planning", "Leadership", "HR Strategy", "Change Management"},
	"Financial Analyst":     {"Financial Modeling", "Excel", "Analysis", "Reporting"},
	"Accountant":            {"Accounting", "Tax", "Financial Reporting", "Excel"},
	"Finance Manager":       {"Financial Planning", "Leadership", "Budgeting", "Analysis"},
	"Controller":            {"Accounting", "Financial Controls", "Compliance", "Leadership"},
	"Marketing Specialist":  {"Digital Marketing", "Content Creation", "Analytics"},
	"Marketing Manager":     {"Strategy", "Leadership", "Campaign Management"},
	"Brand Manager":         {"Brand Strategy", "Marketing", "Communication"},
	"Marketing Director":    {"Strategic Planning", "Leadership", "Brand Management"},
	"Operations Manager":    {"Process Improvement", "Leadership", "Supply Chain"},
	"Operations Specialist": {"Process Improvement", "Data Analysis", "Documentation"},
	"Supply Chain Manager":  {"Supply Chain", "Logistics", "Inventory Management"},
	"Sales Representative":  {"Sales", "CRM", "Communication", "Negotiation"},
	"Sales Manager":         {"Sales Strategy", "Leadership", "CRM", "Team Management"},
	"Account Executive":     {"Sales", "Account Management", "Communication"},
	"Sales Director":        {"Strategic Planning", "Leadership", "Sales Strategy"},
	"Research Scientist":    {"Research", "Data Analysis", "Scientific Writing"},
	"Research Analyst":      {"Research", "Data Analysis", "Reporting"},
	"Research Director":     {"Research Strategy", "Leadership", "Project Management"},
	"Senior Engineer":       {"System Design", "Leadership", "Technical Architecture"},
	"Engineering Manager":   {"Technical Leadership", "Project Management", "Team Management"},
	"Technical Director":    {"Technical Strategy", "Leadership", "Architecture"},
}

// fallbackRecommendation is returned when no course maps to any missing
// skill.
const fallbackRecommendation = "No mapped course; consider custom training"

// Employee identifies one employee for skill gap analysis.
type Employee struct {
	EmployeeNumber int64  `json:"employee_number"`
	JobRole        string `json:"job_role"`
}

// GapReport is the skill gap result for one employee.
type GapReport struct {
	EmployeeNumber  int64    `json:"employee_number"`
	JobRole         string   `json:"job_role"`
	MissingSkills   []string `json:"missing_skills"`
	Recommendations []string `json:"recommendations"`
}

// SkillGap matches employees' known skills against their role's requirements
// and maps gaps to course recommendations.
type SkillGap struct {
	courseMap map[string]string
	patterns  map[string]*regexp.Regexp
}

// NewSkillGap creates the skill gap agent with the given skill→course map.
// A nil map uses the defaults.
func NewSkillGap(courseMap map[string]string) *SkillGap {
	if courseMap == nil {
		courseMap = DefaultCourseMap()
	}
	patterns := make(map[string]*regexp.Regexp, len(courseMap))
	for skill := range courseMap {
		lower := strings.ToLower(skill)
		patterns[lower] = regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`)
	}
	return &SkillGap{courseMap: lowerKeys(courseMap), patterns: patterns}
}

// Analyze computes missing skills per employee from resume text (word
// boundary matches) and training transcripts (already tokenized), and maps
// each gap to a course.
func (s *SkillGap) Analyze(employees []Employee, resumes map[int64]string, transcripts map[int64][]string) []GapReport {
	reports := make([]GapReport, 0, len(employees))
	for _, emp := range employees {
		required := map[string]bool{}
		for _, skill := range RoleSkills[emp.JobRole] {
			required[strings.ToLower(skill)] = true
		}

		known := map[string]bool{}
		text := strings.ToLower(resumes[emp.EmployeeNumber])
		for skill, pat := range s.patterns {
			if pat.MatchString(text) {
				known[skill] = true
			}
		}
		for _, skill := range transcripts[emp.EmployeeNumber] {
			known[strings.ToLower(skill)] = true
		}

		var missing []string
		for skill := range required {
			if !known[skill] {
				missing = append(missing, skill)
			}
		}
		sort.Strings(missing)

		var recs []string
		for _, skill := range missing {
			if course, ok := s.courseMap[skill]; ok {
				recs = append(recs, course)
			}
		}
		if len(recs) == 0 {
			recs = []string{fallbackRecommendation}
		}

		reports = append(reports, GapReport{
			EmployeeNumber:  emp.EmployeeNumber,
			JobRole:         emp.JobRole,
			MissingSkills:   missing,
			Recommendations: recs,
		})
	}
	return reports
}

// RequiredSkills returns the role→skills map for the API surface.
func (s *SkillGap) RequiredSkills() map[string][]string {
	return RoleSkills
}

// DefaultCourseMap maps skills to the default course catalog.
func DefaultCourseMap() map[string]string {
	return map[string]string{
		"Python":             "Python Fundamentals",
		"SQL":                "SQL for Analysts",
		"Git":                "Version Control with Git",
		"Agile":              "Agile Practices",
		"Testing":            "Software Testing Essentials",
		"System Design":      "System Design Workshop",
		"Problem Solving":    "Structured Problem Solving",
		"Linux":              "Linux Administration",
		"Networking":         "Computer Networking Basics",
		"Security":           "Security Foundations",
		"Cloud":              "Cloud Infrastructure 101",
		"Leadership":         "Leadership Development Program",
		"Project Management": "Project Management Professional Prep",
		"Communication":      "Effective Workplace Communication",
		"Excel":              "Advanced Excel",
		"Data Analysis":      "Data Analysis with Spreadsheets",
		"Recruitment":        "Modern Recruitment Techniques",
		"Budgeting":          "Budgeting and Forecasting",
		"Sales":              "Consultative Selling",
		"CRM":                "CRM Systems in Practice",
		"Research":           "Research Methods",
		"Accounting":         "Accounting Principles",
	}
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
