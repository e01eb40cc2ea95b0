package api

// CompetencePayload is the wire form of one competence entry. Every key is
// always present so empty strings reach the backend verbatim.
type CompetencePayload struct {
	Name                  string `json:"name"`
	NameEn                string `json:"nameEn"`
	Description           string `json:"description"`
	DescriptionEn         string `json:"descriptionEn"`
	Category              string `json:"category"`
	CategoryDescription   string `json:"categoryDescription"`
	CategoryDescriptionEn string `json:"categoryDescriptionEn"`
}

// BuildRequest is the payload shared by the build and preview endpoints.
type BuildRequest struct {
	AssessmentName          string              `json:"assessmentName"`
	AssessmentNameEn        string              `json:"assessmentNameEn"`
	AssessmentDescription   string              `json:"assessmentDescription"`
	AssessmentDescriptionEn string              `json:"assessmentDescriptionEn"`
	AssessmentInstruction   string              `json:"assessmentInstruction"`
	AssessmentInstructionEn string              `json:"assessmentInstructionEn"`
	Competences             []CompetencePayload `json:"competences"`
}

// BuildResponse is returned by POST /api/assessments/build.
type BuildResponse struct {
	Success  bool     `json:"success"`
	ID       int64    `json:"id,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// BuildFailedMessage is the message of the response synthesized when the
// build call never produced a usable body.
const BuildFailedMessage = "Failed to build assessment"

// FailedBuildResponse returns the synthesized response used when the build
// request fails in transport.
func FailedBuildResponse() BuildResponse {
	return BuildResponse{Success: false, Message: BuildFailedMessage}
}

// PreviewResponse is returned by POST /api/xml/preview.
//
// QuestionnaireXML and ReportXML are the primary documents. Newer backends
// also send one document per language; those land in the *Nl/*En fields.
type PreviewResponse struct {
	QuestionnaireXML   string   `json:"questionnaireXml"`
	ReportXML          string   `json:"reportXml"`
	QuestionnaireXMLNl string   `json:"questionnaireXmlNl,omitempty"`
	QuestionnaireXMLEn string   `json:"questionnaireXmlEn,omitempty"`
	ReportXMLNl        string   `json:"reportXmlNl,omitempty"`
	ReportXMLEn        string   `json:"reportXmlEn,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// HasLanguageVariants reports whether the backend sent per-language documents.
func (p PreviewResponse) HasLanguageVariants() bool {
	return p.QuestionnaireXMLNl != "" || p.QuestionnaireXMLEn != "" ||
		p.ReportXMLNl != "" || p.ReportXMLEn != ""
}

// QuestionnaireFor returns the questionnaire XML for lang, falling back to the
// primary document.
func (p PreviewResponse) QuestionnaireFor(lang string) string {
	return pickXML(lang, p.QuestionnaireXML, p.QuestionnaireXMLNl, p.QuestionnaireXMLEn)
}

// ReportFor returns the report XML for lang, falling back to the primary
// document.
func (p PreviewResponse) ReportFor(lang string) string {
	return pickXML(lang, p.ReportXML, p.ReportXMLNl, p.ReportXMLEn)
}

func pickXML(lang, primary, nl, en string) string {
	switch lang {
	case LangNL:
		if nl != "" {
			return nl
		}
	case LangEN:
		if en != "" {
			return en
		}
	}
	if primary != "" {
		return primary
	}
	if nl != "" {
		return nl
	}
	return en
}

// Language codes understood by the translate endpoint.
const (
	LangNL = "nl"
	LangEN = "en"
)

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	SourceLanguage string   `json:"sourceLanguage"`
	TargetLanguage string   `json:"targetLanguage"`
	Texts          []string `json:"texts"`
}

// TranslateResponse is returned by POST /api/translate. Error carries a
// backend warning or the client-side failure marker.
type TranslateResponse struct {
	Translations []string `json:"translations"`
	Error        string   `json:"error,omitempty"`
}

// TranslationFailedMarker is set on a TranslateResponse synthesized after a
// transport failure.
const TranslationFailedMarker = "Translation failed"

// PassThroughTranslation echoes texts back unchanged with the failure marker.
func PassThroughTranslation(texts []string) TranslateResponse {
	out := make([]string, len(texts))
	copy(out, texts)
	return TranslateResponse{Translations: out, Error: TranslationFailedMarker}
}

// CategorySearchResult is one match from GET /api/categories.
type CategorySearchResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
}

// Category is a read-only category lookup record.
type Category = CategorySearchResult

// CompetenceSearchResult is one match from GET /api/competences.
type CompetenceSearchResult struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
}
