package model

// Branch describes one of the four USAR branches.
type Branch struct {
	Code  string `json:"code"`  // three-digit code inside the enrollment number
	Short string `json:"short"` // short label shown in the table view
	Name  string `json:"name"`
}

// UnknownBranch is returned for enrollment numbers with an unmapped code.
var UnknownBranch = Branch{Code: "", Short: "UNK", Name: "Unknown"}

// branches maps the enrollment-number branch code to branch info.
// Enrollment format: CCCSSSBBBYY (class roll, school code, branch code, year).
var branches = map[string]Branch{
	"519": {Code: "519", Short: "AIDS", Name: "Artificial Intelligence & Data Science"},
	"516": {Code: "516", Short: "AIML", Name: "Artificial Intelligence & Machine Learning"},
	"520": {Code: "520", Short: "IIOT", Name: "Industrial Internet of Things"},
	"517": {Code: "517", Short: "AR", Name: "Automation & Robotics"},
}

// BranchFromRoll extracts the branch from an enrollment number.
// Digits [6:9) carry the branch code; shorter or unmapped rolls yield UnknownBranch.
func BranchFromRoll(rollNo string) Branch {
	if len(rollNo) < 9 {
		return UnknownBranch
	}
	b, ok := branches[rollNo[6:9]]
	if !ok {
		return UnknownBranch
	}
	return b
}

// BranchByShort resolves a short label such as "AIDS" to its branch info.
func BranchByShort(short string) (Branch, bool) {
	for _, b := range branches {
		if b.Short == short {
			return b, true
		}
	}
	return UnknownBranch, false
}

// AllBranches returns the branch vocabulary in a stable order.
func AllBranches() []Branch {
	return []Branch{
		branches["519"],
		branches["516"],
		branches["520"],
		branches["517"],
	}
}
