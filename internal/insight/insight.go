// Package insight maps announcement categories to short advisory text shown
// to students alongside an announcement.
package insight

import "github.com/campusfolio/platform/internal/records"

var categoryBenefits = map[records.Category]string{
	records.CategoryCompetition:      "Builds your competitive profile and problem-solving under time constraints. Useful for placements in software and analytics roles.",
	records.CategoryWorkshop:         "Hands-on learning that you can showcase as applied skills. Helpful for internships and projects.",
	records.CategoryCertification:    "Adds a verifiable credential to your portfolio, improving shortlisting odds.",
	records.CategoryClub:             "Demonstrates initiative and teamwork, valued in leadership tracks.",
	records.CategoryInternship:       "Direct industry exposure; strengthens resume for placements.",
	records.CategoryLeadership:       "Highlights ownership and people skills; strong signal for managerial tracks.",
	records.CategoryCommunityService: "Shows social impact; valued for scholarships and fellowships.",
	records.CategoryVolunteering:     "Demonstrates commitment and initiative beyond academics.",
	records.CategoryGeneral:          "Relevant extracurricular engagement that enhances your holistic profile.",
}

// ForCategory returns the advisory text for a category. Categories without
// a dedicated entry fall back to the general advisory.
func ForCategory(c records.Category) string {
	if benefit, ok := categoryBenefits[c]; ok {
		return benefit
	}
	return categoryBenefits[records.CategoryGeneral]
}
