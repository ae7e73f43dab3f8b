package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/screening/internal/domain/screening"
)

// ScreeningHandler handles one-shot screening calculations.
type ScreeningHandler struct {
	deps ScreeningDependencies
}

// NewScreeningHandler creates a new screening handler.
func NewScreeningHandler(deps ScreeningDependencies) *ScreeningHandler {
	return &ScreeningHandler{deps: deps}
}

// rawValue accepts a field value as either a JSON string or a JSON number.
// Strings keep their literal text for validation; numbers with an integral
// value such as 250.0 or 2.5e2 are rewritten in plain integer form.
type rawValue string

func (s *rawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = rawValue(v)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.New("value must be a string or a number")
		}
		*s = rawValue(integralText(n))
	}
	return nil
}

// maxExactFloat is the largest magnitude at which every integer is exactly
// representable as a float64.
const maxExactFloat = 1 << 53

func integralText(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

type screeningRequest struct {
	ExamScore rawValue `json:"exam_score"`
	Grades    []string `json:"grades"`
}

type screeningResponse struct {
	screening.Result
	Message string `json:"message"`
}

// HandlePostScreening handles POST /screenings requests.
func (h *ScreeningHandler) HandlePostScreening(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_screening"
	var req screeningRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Calculate(r.Context(), screening.RawInput{
		ExamScore: string(req.ExamScore),
		Grades:    req.Grades,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, screeningResponse{Result: res, Message: screening.FormatResult(res)})
}

// HandleGetGrades handles GET /grades requests.
func (h *ScreeningHandler) HandleGetGrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Grades())
}
