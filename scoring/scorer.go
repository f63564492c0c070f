// Package scoring computes a deterministic, rule-based ATS compatibility
// score for normalized resume text. Scoring is pure: no I/O, no randomness,
// no failure path for any non-empty input.
package scoring

import (
	"math"
	"sort"
	"strings"

	"resume-analyzer/domain"
)

// Sub-score weights for the overall score. Fixed at compile time so results
// stay reproducible; they sum to 1.0. Skill match carries the most weight
// because it is what ATS filters act on first; format is a proxy signal and
// shares the smallest slice with education.
const (
	weightSkill      = 0.40
	weightExperience = 0.30
	weightEducation  = 0.15
	weightFormat     = 0.15
)

// expectedSkillCount is the vocabulary-derived ceiling for the skill
// sub-score: detecting roughly a fifth of the reference vocabulary scores
// 100. With the current vocabulary that is 12 skills.
const expectedSkillCount = 12

// Per-signal points for the experience and education heuristics.
const (
	pointsPerDateRange   = 25
	pointsPerDuration    = 20
	pointsPerSeniority   = 10
	pointsPerDegree      = 30
	pointsPerInstitution = 20
)

// Format sub-score components.
const (
	pointsPerSection    = 20
	maxSectionPoints    = 60
	pointsBodyLength    = 25
	pointsNoRepetition  = 15
	minReasonableLength = 300
	maxReasonableLength = 15000
	// Repetition is judged only on texts long enough for token frequency to
	// mean anything; above this ratio one token dominates pathologically.
	repetitionMinTokens = 30
	repetitionMaxRatio  = 0.15
)

// Score evaluates normalized resume text against the reference vocabulary
// and, when targetSkills is non-empty, reports which target skills are
// absent. Identical input always yields an identical result.
func Score(text string, targetSkills []string) domain.ScoreResult {
	skills := DetectSkills(text)

	breakdown := domain.ScoreBreakdown{
		Skill:      skillScore(len(skills)),
		Experience: experienceScore(text),
		Education:  educationScore(text),
		Format:     formatScore(text),
	}

	overall := weightSkill*float64(breakdown.Skill) +
		weightExperience*float64(breakdown.Experience) +
		weightEducation*float64(breakdown.Education) +
		weightFormat*float64(breakdown.Format)

	return domain.ScoreResult{
		Score:         int(math.Round(overall)),
		Breakdown:     breakdown,
		Skills:        skills,
		MissingSkills: missingSkills(skills, targetSkills),
	}
}

type detectedSkill struct {
	surface  string // the skill as it appears in the text
	pos      int    // byte offset of first appearance
	vocabIdx int
}

// DetectSkills returns the vocabulary skills present in text, in order of
// first appearance, deduplicated, each in the casing the text uses.
func DetectSkills(text string) []string {
	var found []detectedSkill
	for i, re := range skillMatchers {
		idx := re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}
		// Group 2 is the skill itself, between the boundary groups.
		start, end := idx[4], idx[5]
		found = append(found, detectedSkill{
			surface:  text[start:end],
			pos:      start,
			vocabIdx: i,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].pos != found[j].pos {
			return found[i].pos < found[j].pos
		}
		return found[i].vocabIdx < found[j].vocabIdx
	})

	skills := make([]string, 0, len(found))
	for _, s := range found {
		skills = append(skills, s.surface)
	}
	return skills
}

// missingSkills returns the target entries not covered by the detected
// skills, preserving the target order. Empty when no target is supplied.
func missingSkills(detected, targetSkills []string) []string {
	if len(targetSkills) == 0 {
		return nil
	}

	have := make(map[string]struct{}, len(detected))
	for _, s := range detected {
		have[strings.ToLower(s)] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{}, len(targetSkills))
	for _, target := range targetSkills {
		key := strings.ToLower(strings.TrimSpace(target))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; !ok {
			missing = append(missing, target)
		}
	}
	return missing
}

func skillScore(detected int) int {
	return clamp(detected * 100 / expectedSkillCount)
}

func experienceScore(text string) int {
	ranges := len(dateRangePattern.FindAllString(text, -1))
	durations := len(durationPattern.FindAllString(text, -1))
	seniority := len(seniorityPattern.FindAllString(text, -1))
	return clamp(ranges*pointsPerDateRange + durations*pointsPerDuration + seniority*pointsPerSeniority)
}

func educationScore(text string) int {
	degrees := len(degreePattern.FindAllString(text, -1))
	institutions := len(institutionPattern.FindAllString(text, -1))
	return clamp(degrees*pointsPerDegree + institutions*pointsPerInstitution)
}

// formatScore estimates how cleanly an ATS crawler would parse the text:
// expected section headers, a reasonable overall length, and no single token
// dominating the body.
func formatScore(text string) int {
	score := 0

	sections := 0
	for _, re := range sectionHeaderPatterns {
		if re.MatchString(text) {
			sections += pointsPerSection
		}
	}
	if sections > maxSectionPoints {
		sections = maxSectionPoints
	}
	score += sections

	if n := len(text); n >= minReasonableLength && n <= maxReasonableLength {
		score += pointsBodyLength
	}

	if !pathologicalRepetition(text) {
		score += pointsNoRepetition
	}

	return clamp(score)
}

func pathologicalRepetition(text string) bool {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) < repetitionMinTokens {
		return false
	}
	counts := make(map[string]int, len(tokens))
	maxCount := 0
	for _, tok := range tokens {
		counts[tok]++
		if counts[tok] > maxCount {
			maxCount = counts[tok]
		}
	}
	return float64(maxCount)/float64(len(tokens)) > repetitionMaxRatio
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
