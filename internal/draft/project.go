package draft

import "github.com/abhisek/assessor/internal/api"

// Project converts a draft into the payload shared by build and preview.
// Values pass through verbatim and in order; entry identities and new
// markers are dropped. The input is not modified.
func Project(a Assessment) api.BuildRequest {
	competences := make([]api.CompetencePayload, 0, len(a.Entries))
	for _, e := range a.Entries {
		competences = append(competences, ProjectEntry(e))
	}
	return api.BuildRequest{
		AssessmentName:          a.Name,
		AssessmentNameEn:        a.NameEn,
		AssessmentDescription:   a.Description,
		AssessmentDescriptionEn: a.DescriptionEn,
		AssessmentInstruction:   a.Instruction,
		AssessmentInstructionEn: a.InstructionEn,
		Competences:             competences,
	}
}

// ProjectEntry converts one entry into its wire form.
func ProjectEntry(e Entry) api.CompetencePayload {
	return api.CompetencePayload{
		Name:                  e.Name,
		NameEn:                e.NameEn,
		Description:           e.Description,
		DescriptionEn:         e.DescriptionEn,
		Category:              e.Category,
		CategoryDescription:   e.CategoryDescription,
		CategoryDescriptionEn: e.CategoryDescriptionEn,
	}
}
