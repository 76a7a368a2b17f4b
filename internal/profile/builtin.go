package profile

import (
	"github.com/Karanpr-18/Excel-cleaning/internal/derived"
	"github.com/Karanpr-18/Excel-cleaning/internal/rules"
)

// Column headers shared by the student survey profiles.
const (
	ColStudentAge   = "Student's Age"
	ColDateOfBirth  = "Student's Date of Birth"
	ColEnrolment    = "Enrolment Date"
	ColCurrentGrade = "Current Grade After Mainstream"
	ColBaseline     = "Baseline Total"
	ColEndline      = "Endline Total"
)

var (
	baselineSubjects = []string{"Baseline Math", "Baseline English", "Baseline EVS", "Baseline Hindi"}
	endlineSubjects  = []string{"Endline Math", "Endline English", "Endline EVS", "Endline Hindi"}
	gradeTestColumns = []string{
		"Grade Test 1", "Grade Test 2", "Grade Test 3", "Grade Test 4", "Grade Test 5",
	}
)

func col(name string, rs ...rules.Rule) Column {
	return Column{Name: name, Rules: rs}
}

func (c Column) checked(chk derived.Check) Column {
	c.Check = chk
	return c
}

var (
	required = rules.NotNull()
	numeric  = rules.Numeric()
	date     = rules.Date()
	plain    = rules.NoSpecialChars()
)

// studentVariant captures where the student profiles differ.
type studentVariant struct {
	age            Column
	gradeTestRules []rules.Rule
	occupation     []rules.Rule
	extra          []Column
}

func studentColumns(v studentVariant) []Column {
	subject := derived.Ceiling{Tiers: derived.SubjectTiers, Name: "subject"}
	total := derived.Ceiling{Tiers: derived.TotalTiers, Name: "total"}

	cols := []Column{
		col("Student's First Name", required, plain),
		v.age,
		col(ColDateOfBirth, required, date),
		col("Father's Age", required, numeric),
		col("Father's Occupation", v.occupation...),
		col("Father's Education", required),
		col("Mother's Name", required),
		col("Mother's Age", required, numeric),
		col("Mother's Occupation", v.occupation...),
		col("How long are you planning to stay in this area?", required),
		col("Contact No.", required, rules.ExactDigitCount(10)),
		col("House Address", required),
		col("Pincode", required, numeric),
		col("People living in house", required, numeric),
		col("Cast", required, plain),
		col("Religion", required, plain),
		col("Parents' Monthly Income", required),
		col("Parents' Monthly Expenditure", required),
	}
	for _, name := range baselineSubjects {
		cols = append(cols, col(name, required, numeric).checked(subject))
	}
	cols = append(cols,
		col(ColBaseline, required, numeric).checked(total),
		col("Baseline Percentage", required, numeric),
	)
	for _, name := range gradeTestColumns {
		cols = append(cols, col(name, v.gradeTestRules...).checked(derived.FlatCeiling{Max: 40}))
	}
	for _, name := range endlineSubjects {
		cols = append(cols, col(name, required, numeric).checked(subject))
	}
	cols = append(cols, col(ColEndline, required, numeric).checked(derived.Progression{Baseline: ColBaseline, Ceiling: &total}))
	return append(cols, v.extra...)
}

func mainstreamColumns() []Column {
	return []Column{
		col("Mainstream Institution Name", required),
		col("Mainstream Institution Address", required),
		col("School DISE Code", required),
		col("Mainstream Grade", required),
		col("Child SR given by the Institution", required),
		col("State", required),
		col("District", required),
		col("Mainstream Date", required, date),
		col(ColCurrentGrade, required),
	}
}

func kadam() *Profile {
	return mustNew(Config{
		Name:  "kadam",
		Label: "Kadam",
		Sheet: "Compile Report",
		Basis: derived.GradeBasis{Column: ColCurrentGrade},
		Columns: studentColumns(studentVariant{
			age: col(ColStudentAge, required, numeric).checked(derived.AgeRange{
				BirthColumn: ColDateOfBirth, ReferenceColumn: ColEnrolment, Min: 6, Max: 14,
			}),
			gradeTestRules: []rules.Rule{required, numeric},
			occupation:     []rules.Rule{required, plain},
			extra:          mainstreamColumns(),
		}),
	})
}

func kadamCond() *Profile {
	return mustNew(Config{
		Name:  "kadam_cond",
		Label: "KadamCond",
		Sheet: "Compile Report",
		Basis: derived.AgeBasis{Column: ColStudentAge, Bands: derived.DefaultAgeBands},
		Columns: studentColumns(studentVariant{
			age: col(ColStudentAge, required, numeric, rules.MinValue(7).Because("Age is less than 7")).checked(derived.AgeRange{
				BirthColumn: ColDateOfBirth, ReferenceColumn: ColEnrolment, Min: 6.6, Max: 14,
			}),
			gradeTestRules: []rules.Rule{numeric},
			occupation:     []rules.Rule{required},
			extra:          mainstreamColumns(),
		}),
	})
}

func kadamPlus() *Profile {
	return mustNew(Config{
		Name:  "kadam_plus",
		Label: "KadamPlus",
		Sheet: "Consolidated",
		Basis: derived.GradeBasis{Column: ColCurrentGrade},
		Columns: studentColumns(studentVariant{
			age: col(ColStudentAge, required, numeric).checked(derived.AgeRange{
				BirthColumn: ColDateOfBirth, ReferenceColumn: ColEnrolment, Min: 6.5, Max: 14.083,
			}),
			gradeTestRules: []rules.Rule{required, numeric},
			occupation:     []rules.Rule{required},
		}),
	})
}

func womenEmp() *Profile {
	mandatory := rules.NotNull().Because("Mandatory field is empty")
	name := rules.AlphabeticOnly()

	cols := []Column{}
	for _, n := range []string{"State", "District", "Block", "Village", "Project"} {
		cols = append(cols, col(n, mandatory))
	}
	cols = append(cols, col("User Name(FE)", mandatory, name))
	for _, n := range []string{"Cast", "Economic Status", "Marital Status", "Registration Date", "Education"} {
		cols = append(cols, col(n, mandatory))
	}
	for _, n := range []string{"Women Name", "Husband / Father Name", "Mother Name"} {
		cols = append(cols, col(n, mandatory, name))
	}
	cols = append(cols,
		col("Phone No.", rules.ExactDigitCount(10).Because("Phone No. should be exactly 10 digits")),
		col("Any ID Proof Details", mandatory),
		col("ID Proof No.").checked(derived.RequiredIf{
			Companion:     "Any ID Proof Details",
			MissingReason: "ID Proof No. required when Any ID Proof Details is provided",
		}),
	)
	for _, n := range []string{
		"Ration Card", "Ration Card linked PDS", "Bank Account No.",
		"Monthly Individual Income", "Monthly Household Income", "Is Life Skills Training",
		"Start Business", "Business", "Business When", "Status Business",
	} {
		cols = append(cols, col(n, mandatory))
	}
	population := "Village Population should be numeric and not empty"
	cols = append(cols, col("Village Population", rules.NotNull().Because(population), rules.Numeric().Because(population)))
	for _, n := range []string{
		"Business Idea", "Business Type", "Procure Business", "Current Business",
		"Regular Financial Business", "How Regular Financial", "Setting Business Type",
		"Potential Customers", "Business Distance", "How Far Bussiness", "Planning Business",
		"Support Business", "Support Type", "Not Provided Support", "Own Smart Phone",
		"Use Smart Phone", "Supply Chain", "Date Of Business Inauguration", "Aadhaar Card Details",
	} {
		cols = append(cols, col(n, mandatory))
	}
	cols = append(cols, col("Aadhaar No.").checked(derived.RequiredIf{
		Companion:     "Aadhaar Card Details",
		Equals:        "yes",
		Digits:        12,
		MissingReason: "Aadhaar No. required when Aadhaar Card Details is yes",
		DigitsReason:  "Aadhaar No. should be exactly 12 digits when Aadhaar Card Details is yes",
	}))

	return mustNew(Config{
		Name:    "women_emp",
		Label:   "WomenEmp",
		Columns: cols,
	})
}
