package api

import (
	"net/http"

	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

// =============================================================================
// STATELESS CALCULATORS
// =============================================================================
// These endpoints run the engine on the request body alone. Nothing is
// stored; they back spreadsheet-style clients that keep their own state.

// Score sums factor points for one set of selections.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	m := point.DefaultFactors()
	if req.FactorMap != nil {
		if err := req.FactorMap.Validate(); err != nil {
			h.fail(w, r, err)
			return
		}
		m = *req.FactorMap
	}
	writeJSON(w, http.StatusOK, ScoreResponse{
		Score:     point.Score(req.Factors, m),
		Unmatched: point.Unmatched(req.Factors, m),
	})
}

// Range derives min and max from a midpoint and spread.
func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, grading.RangeFor(req.Mid, req.Spread))
}

// Recompute rebuilds ranges and overlaps for a client-held grade list,
// taken in grade ID order.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toGrades()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	grades := grading.Recompute(input)
	writeJSON(w, http.StatusOK, newStructureResponse(grades, grading.Diagnose(grades, 0)))
}

// PreviewPartition shows how scored jobs would be grouped.
func (h *Handler) PreviewPartition(w http.ResponseWriter, r *http.Request) {
	var req PartitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	rows, err := engine.Preview(req.Jobs, grading.Method(req.Method), req.Param)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Param: req.Param, Rows: rows})
}

// GeneratePartition builds a seeded structure for scored jobs. The
// configured default base wage is used when the request has none.
func (h *Handler) GeneratePartition(w http.ResponseWriter, r *http.Request) {
	var req PartitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	baseWage := req.BaseWage
	if baseWage == 0 {
		baseWage = h.Defaults.BaseWage
	}
	method := grading.Method(req.Method)
	grades, err := engine.Generate(req.Jobs, method, req.Param, baseWage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	warnings := grading.Diagnose(grades, baseWage)
	if h.Metrics != nil {
		h.Metrics.StructureGenerated(method, grades, warnings)
	}
	writeJSON(w, http.StatusOK, newStructureResponse(grades, warnings))
}
