package scoring

import "regexp"

// skillVocabulary is the fixed reference vocabulary for skill detection.
// Entries are matched case-insensitively with word-boundary guards, each
// evaluated independently ("java" never matches inside "javascript").
// Order here is the tie-break order for skills detected at the same
// position, so the list must stay stable.
var skillVocabulary = []string{
	"python", "java", "javascript", "typescript", "golang", "rust",
	"c++", "c#", "php", "ruby", "kotlin", "swift", "scala",
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"rabbitmq", "kafka",
	"docker", "kubernetes", "terraform", "ansible",
	"aws", "azure", "gcp", "linux", "git",
	"react", "angular", "vue", "node.js", "django", "flask", "spring",
	"laravel", "rails",
	"graphql", "rest api", "grpc", "microservices",
	"html", "css", "sass",
	"ci/cd", "jenkins",
	"agile", "scrum",
	"machine learning", "data analysis", "tensorflow", "pytorch",
	"excel", "tableau", "power bi",
	"communication", "leadership", "project management",
}

// boundary is the character class treated as a word edge. Letters, digits
// and the symbols that appear inside vocabulary entries (+, #) are interior;
// everything else separates tokens, so "Docker." and "(SQL)" still match.
const boundary = `[^a-zA-Z0-9+#]`

var skillMatchers = buildSkillMatchers()

func buildSkillMatchers() []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, 0, len(skillVocabulary))
	for _, skill := range skillVocabulary {
		pattern := `(?i)(^|` + boundary + `)(` + regexp.QuoteMeta(skill) + `)($|` + boundary + `)`
		matchers = append(matchers, regexp.MustCompile(pattern))
	}
	return matchers
}

// Experience signals: explicit employment date ranges, duration phrases and
// seniority markers. Heuristics over prose, not a parse of work history.
var (
	dateRangePattern = regexp.MustCompile(
		`(?i)\b(19|20)\d{2}\s*(-|–|—|to)\s*((19|20)\d{2}|present|current|now)\b`)
	durationPattern  = regexp.MustCompile(`(?i)\b\d+\+?\s*(years?|yrs?)\b`)
	seniorityPattern = regexp.MustCompile(
		`(?i)\b(senior|lead|principal|staff|manager|director|architect|junior|intern(ship)?)\b`)
)

// Education signals.
var (
	degreePattern = regexp.MustCompile(
		`(?i)\b(bachelor(?:'s)?|master(?:'s)?|ph\.?d|b\.?sc?|m\.?sc?|mba|b\.?tech|m\.?tech|diploma|degree)\b`)
	institutionPattern = regexp.MustCompile(`(?i)\b(university|college|institute|academy)\b`)
)

// sectionHeaderPatterns are the section names an ATS crawler expects to find
// in a resume; their presence feeds the format sub-score.
var sectionHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(summary|objective|profile)\b`),
	regexp.MustCompile(`(?i)\b(experience|employment|work history)\b`),
	regexp.MustCompile(`(?i)\beducation\b`),
	regexp.MustCompile(`(?i)\b(skills|technologies|competencies)\b`),
	regexp.MustCompile(`(?i)\b(projects|certifications)\b`),
}
