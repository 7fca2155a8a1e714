package types

import (
	"github.com/go-playground/validator/v10"
)

// Page identifies a screen of the client application
type Page string

// Pages of the client application
const (
	PageLanding           Page = "Landing Page"
	PageDashboard         Page = "Dashboard"
	PageResumeEnhancement Page = "Resume Enhancement"
	PageJobMatching       Page = "Job Matching"
	PageInterviewCoaching Page = "Interview Coaching"
	PageCareerAssistant   Page = "Career Assistant"
)

// Pages lists every page in navigation order
var Pages = []Page{
	PageLanding,
	PageDashboard,
	PageResumeEnhancement,
	PageJobMatching,
	PageInterviewCoaching,
	PageCareerAssistant,
}

// IsValid reports whether p is a known page
func (p Page) IsValid() bool {
	for _, known := range Pages {
		if known == p {
			return true
		}
	}
	return false
}

// validate is shared by all request types; it is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("section", func(fl validator.FieldLevel) bool {
		return SectionName(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("page", func(fl validator.FieldLevel) bool {
		return Page(fl.Field().String()).IsValid()
	})
	return v
}

// Validator returns the validator used for request types, with the
// "section" and "page" tags registered.
func Validator() *validator.Validate {
	return validate
}

// ExportOptions selects the PDF layout. Unknown templates render as Standard.
type ExportOptions struct {
	Template string `json:"template,omitempty" validate:"omitempty,max=32"`
	Color    string `json:"color,omitempty" validate:"omitempty,max=32"`
	Font     string `json:"font,omitempty" validate:"omitempty,oneof=Helvetica Times-Roman Courier"`
}

// Validate validates the ExportOptions using the validator.
func (r *ExportOptions) Validate() error {
	return validate.Struct(r)
}

// DesignRequest reorders sections into a new resume
type DesignRequest struct {
	Order  []SectionName `json:"order" validate:"required,min=1,dive,section"`
	Export bool          `json:"export,omitempty"`
	ExportOptions
}

// Validate validates the DesignRequest using the validator.
func (r *DesignRequest) Validate() error {
	return validate.Struct(r)
}

// ATSRequest asks for an ATS score, optionally against a job description
type ATSRequest struct {
	JobDescription string `json:"job_description,omitempty" validate:"max=50000"`
}

// Validate validates the ATSRequest using the validator.
func (r *ATSRequest) Validate() error {
	return validate.Struct(r)
}

// JobDescriptionRequest carries a job description for matching or salary advice,
// either as text or as the URL of a job posting
type JobDescriptionRequest struct {
	JobDescription string `json:"job_description,omitempty" validate:"required_without=JobURL,max=50000"`
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,http_url,max=2048"`
}

// Validate validates the JobDescriptionRequest using the validator.
func (r *JobDescriptionRequest) Validate() error {
	return validate.Struct(r)
}

// PortfolioRequest selects the portfolio style
type PortfolioRequest struct {
	Template string `json:"template" validate:"required,oneof=Minimalist Professional Creative"`
	Color    string `json:"color" validate:"required,oneof=white blue green"`
}

// Validate validates the PortfolioRequest using the validator.
func (r *PortfolioRequest) Validate() error {
	return validate.Struct(r)
}

// InterviewAnswerRequest is a typed answer to the pending interview question
type InterviewAnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=10000"`
}

// Validate validates the InterviewAnswerRequest using the validator.
func (r *InterviewAnswerRequest) Validate() error {
	return validate.Struct(r)
}

// ChatRequest is a message to the career assistant
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	return validate.Struct(r)
}

// PreferencesRequest updates UI preferences. Nil fields are left unchanged.
type PreferencesRequest struct {
	DarkMode    *bool   `json:"dark_mode,omitempty"`
	CurrentPage *string `json:"current_page,omitempty" validate:"omitempty,page"`
}

// Validate validates the PreferencesRequest using the validator.
func (r *PreferencesRequest) Validate() error {
	return validate.Struct(r)
}
