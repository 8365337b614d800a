package dispatcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leadflow/leadflow/pkg/domain"
)

// Scoring weights against the user's ideal customer persona. The four
// components cap at 3+3+2+2 = 10.
const (
	industryWeight = 3
	sizeWeight     = 3
	useCaseWeight  = 2
	painWeight     = 2

	hotThreshold  = 8
	coldThreshold = 4
)

type leadScore struct {
	Total    int
	Industry int
	Size     int
	UseCase  int
	Pain     int
	Rating   domain.LeadRating
}

func scoreLead(lead domain.Lead, icp domain.ICP) leadScore {
	score := leadScore{
		Industry: scoreIndustry(lead.Industry, icp.TargetIndustries),
		Size:     scoreCompanySize(lead.CompanySize, icp.CompanySizeRange),
		UseCase:  scoreTextMatch(lead.Background, icp.UseCases, useCaseWeight),
		Pain:     scoreTextMatch(lead.Background, icp.PainPoints, painWeight),
	}

	score.Total = score.Industry + score.Size + score.UseCase + score.Pain

	switch {
	case score.Total >= hotThreshold:
		score.Rating = domain.LeadRatingHot
	case score.Total > coldThreshold:
		score.Rating = domain.LeadRatingWarm
	default:
		score.Rating = domain.LeadRatingCold
	}

	return score
}

func scoreIndustry(industry string, targets []string) int {
	if industry == "" {
		return 0
	}

	normalized := strings.ToLower(strings.TrimSpace(industry))

	for _, target := range targets {
		targetNorm := strings.ToLower(strings.TrimSpace(target))
		if targetNorm == "" {
			continue
		}
		if normalized == targetNorm {
			return industryWeight
		}
		if strings.Contains(normalized, targetNorm) || strings.Contains(targetNorm, normalized) {
			return industryWeight - 1
		}
	}

	return 0
}

func scoreCompanySize(companySize, sizeRange string) int {
	employees, ok := firstNumber(companySize)
	if !ok {
		return 0
	}

	low, high, ok := parseSizeRange(sizeRange)
	if !ok {
		return 0
	}

	if employees >= low && employees <= high {
		return sizeWeight
	}
	// Near misses still indicate rough fit.
	if employees >= low/2 && employees <= high*2 {
		return 1
	}

	return 0
}

func scoreTextMatch(background string, phrases []string, weight int) int {
	if background == "" {
		return 0
	}

	haystack := strings.ToLower(background)

	for _, phrase := range phrases {
		needle := strings.ToLower(strings.TrimSpace(phrase))
		if needle != "" && strings.Contains(haystack, needle) {
			return weight
		}
	}

	return 0
}

// parseSizeRange reads ranges like "50-500", "500+" or a bare number.
func parseSizeRange(sizeRange string) (int, int, bool) {
	sizeRange = strings.TrimSpace(sizeRange)
	if sizeRange == "" {
		return 0, 0, false
	}

	if idx := strings.IndexAny(sizeRange, "-–"); idx > 0 {
		low, okLow := firstNumber(sizeRange[:idx])
		high, okHigh := firstNumber(sizeRange[idx+1:])
		if okLow && okHigh {
			return low, high, true
		}
	}

	if strings.HasSuffix(sizeRange, "+") {
		if low, ok := firstNumber(sizeRange); ok {
			return low, 1 << 30, true
		}
	}

	if n, ok := firstNumber(sizeRange); ok {
		return n, n, true
	}

	return 0, 0, false
}

// firstNumber pulls the first integer out of free-form text like "about 120
// employees" or "51-200".
func firstNumber(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}

	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}

	return 0, false
}

func fallbackReasoning(lead domain.Lead, score leadScore) string {
	return fmt.Sprintf(
		"%s scored %d/10 (industry %d/%d, company size %d/%d, use-case fit %d/%d, pain-point fit %d/%d).",
		lead.Name, score.Total,
		score.Industry, industryWeight,
		score.Size, sizeWeight,
		score.UseCase, useCaseWeight,
		score.Pain, painWeight,
	)
}
