/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response / *DTO: Types returned to clients

VALIDATION:
  Request types carry go-playground/validator tags. Handlers run the
  validator after decoding; field names in error details are the JSON
  names. Rules the engine owns (a known template, a grade that exists)
  are checked by the engine, not here.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/factors.go: FactorFile wire type
*/
package api

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// SESSION REQUESTS
// =============================================================================

// CreateSessionRequest starts a session, optionally from a template.
type CreateSessionRequest struct {
	TemplateID  string `json:"template_id" validate:"omitempty,max=64"`
	Method      string `json:"method" validate:"omitempty,oneof=point ranking"`
	CompanyName string `json:"company_name" validate:"max=200"`
	BaseWage    int64  `json:"base_wage" validate:"gte=0"`
}

type SignatoryDTO struct {
	Name  string `json:"name" validate:"max=200"`
	Title string `json:"title" validate:"max=200"`
}

type AnchorsDTO struct {
	MinMidpoint int64 `json:"min_midpoint" validate:"gte=0"`
	MaxMidpoint int64 `json:"max_midpoint" validate:"gte=0"`
}

// ConfigRequest replaces the company settings of a session.
type ConfigRequest struct {
	CompanyName string       `json:"company_name" validate:"max=200"`
	BaseWage    int64        `json:"base_wage" validate:"gt=0"`
	Anchors     AnchorsDTO   `json:"anchors"`
	Creator     SignatoryDTO `json:"creator"`
	Approver    SignatoryDTO `json:"approver"`
}

func (r ConfigRequest) toConfig() engine.Config {
	return engine.Config{
		CompanyName: r.CompanyName,
		BaseWage:    r.BaseWage,
		Anchors:     grading.Anchors{MinMidpoint: r.Anchors.MinMidpoint, MaxMidpoint: r.Anchors.MaxMidpoint},
		Creator:     engine.Signatory{Name: r.Creator.Name, Title: r.Creator.Title},
		Approver:    engine.Signatory{Name: r.Approver.Name, Title: r.Approver.Title},
	}
}

type TemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required,max=64"`
}

type MethodRequest struct {
	Method string `json:"method" validate:"required,oneof=point ranking"`
}

// =============================================================================
// JOB REQUESTS
// =============================================================================

// JobRequest adds a job. Rank is only used under the ranking method,
// Factors only under the point method.
type JobRequest struct {
	Title   string         `json:"title" validate:"max=200"`
	Note    string         `json:"note" validate:"max=500"`
	Rank    int            `json:"rank" validate:"gte=0"`
	Factors map[string]int `json:"factors" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
}

func (r JobRequest) toInput() engine.JobInput {
	return engine.JobInput{Title: r.Title, Note: r.Note, Rank: r.Rank, Factors: r.Factors}
}

// JobPatchRequest updates a job. Omitted fields are left unchanged.
type JobPatchRequest struct {
	Title   *string        `json:"title" validate:"omitempty,max=200"`
	Note    *string        `json:"note" validate:"omitempty,max=500"`
	Rank    *int           `json:"rank" validate:"omitempty,gt=0"`
	Factors map[string]int `json:"factors" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
}

func (r JobPatchRequest) toPatch() engine.JobPatch {
	return engine.JobPatch{Title: r.Title, Note: r.Note, Rank: r.Rank, Factors: r.Factors}
}

// =============================================================================
// FACTOR REQUESTS
// =============================================================================

// FactorRequest creates or renames a factor.
type FactorRequest struct {
	Label string `json:"label" validate:"required,max=100"`
}

// OptionRequest adds a level. An empty label gets the default level label.
type OptionRequest struct {
	Label string `json:"label" validate:"max=100"`
}

// OptionPatchRequest edits a level. Omitted fields are left unchanged.
type OptionPatchRequest struct {
	Label *string `json:"label" validate:"omitempty,min=1,max=100"`
	Score *int    `json:"score" validate:"omitempty,gte=0"`
}

// =============================================================================
// STRUCTURE REQUESTS
// =============================================================================

type GenerateRequest struct {
	Param int `json:"param" validate:"required,gt=0"`
}

// GradePatchRequest edits one grade. Spread above 100 is clamped by the engine.
type GradePatchRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Mid    *int64  `json:"mid" validate:"omitempty,gt=0"`
	Spread *int    `json:"spread" validate:"omitempty,gte=0"`
}

func (r GradePatchRequest) toPatch() grading.GradePatch {
	return grading.GradePatch{Name: r.Name, Mid: r.Mid, Spread: r.Spread}
}

// =============================================================================
// CALCULATOR REQUESTS (stateless)
// =============================================================================

// ScoreRequest scores selections against FactorMap, or the default
// factors when it is omitted.
type ScoreRequest struct {
	Factors   map[string]int   `json:"factors" validate:"required"`
	FactorMap *point.FactorMap `json:"factor_map"`
}

type RangeRequest struct {
	Mid    int64 `json:"mid" validate:"gt=0"`
	Spread int   `json:"spread" validate:"gte=0,lte=100"`
}

// RecomputeRequest carries a client-held grade list. Min, max and overlap
// are always derived again, so only the pay inputs are read.
type RecomputeRequest struct {
	Grades []GradeInput `json:"grades" validate:"required,min=1,dive"`
}

type GradeInput struct {
	ID         int      `json:"id" validate:"gt=0"`
	Name       string   `json:"name" validate:"max=100"`
	Mid        int64    `json:"mid" validate:"gt=0"`
	Spread     int      `json:"spread" validate:"gte=0,lte=100"`
	JobTitles  []string `json:"job_titles"`
	RangeLabel string   `json:"range_label"`
}

// toGrades orders the grades by ID and requires the IDs to run from 1
// without gaps, as overlap is measured against the previous grade.
func (r RecomputeRequest) toGrades() ([]grading.Grade, error) {
	grades := make([]grading.Grade, len(r.Grades))
	for i, in := range r.Grades {
		name := in.Name
		if name == "" {
			name = grading.GradeName(in.ID)
		}
		grades[i] = grading.Grade{
			ID:         in.ID,
			Name:       name,
			Mid:        in.Mid,
			Spread:     in.Spread,
			JobTitles:  in.JobTitles,
			RangeLabel: in.RangeLabel,
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	for i, g := range grades {
		if g.ID != i+1 {
			return nil, fmt.Errorf("%w: grade ids must run from 1 without gaps, found %d at position %d", ErrBadRequest, g.ID, i+1)
		}
	}
	return grades, nil
}

// PartitionRequest previews or generates a structure for jobs that were
// already scored by the caller.
type PartitionRequest struct {
	Method   string        `json:"method" validate:"required,oneof=point ranking"`
	Param    int           `json:"param" validate:"required,gt=0"`
	Jobs     []grading.Job `json:"jobs" validate:"required,min=1"`
	BaseWage int64         `json:"base_wage" validate:"gte=0"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// SessionResponse is a session with its current structure warnings.
type SessionResponse struct {
	*engine.Session
	Warnings []grading.Warning `json:"warnings"`
}

func newSessionResponse(s *engine.Session) SessionResponse {
	warnings := s.Diagnostics()
	if warnings == nil {
		warnings = []grading.Warning{}
	}
	return SessionResponse{Session: s, Warnings: warnings}
}

type StructureResponse struct {
	Grades   []grading.Grade   `json:"grades"`
	Warnings []grading.Warning `json:"warnings"`
}

func newStructureResponse(grades []grading.Grade, warnings []grading.Warning) StructureResponse {
	if warnings == nil {
		warnings = []grading.Warning{}
	}
	return StructureResponse{Grades: grades, Warnings: warnings}
}

type ScoreResponse struct {
	Score     int      `json:"score"`
	Unmatched []string `json:"unmatched,omitempty"`
}

type PreviewResponse struct {
	Param int                  `json:"param"`
	Rows  []grading.PreviewRow `json:"rows"`
}

// TemplateDTO lists a template without its job details.
type TemplateDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Method      grading.Method  `json:"method"`
	JobCount    int             `json:"job_count"`
	Anchors     grading.Anchors `json:"anchors"`
}

func toTemplateDTO(t factory.Template) TemplateDTO {
	return TemplateDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Method:      t.Method,
		JobCount:    len(t.Jobs),
		Anchors:     t.Anchors,
	}
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
