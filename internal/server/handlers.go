package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/quizgen"
)

// Request defaults applied when a body omits a field.
const (
	defaultSkill          = "vocabulary"
	defaultDifficulty     = "easy"
	defaultCount          = 10
	defaultPoolMultiplier = 3
)

// HealthHandler reports liveness and the model configuration.
type HealthHandler struct {
	pipeline Pipeline
	model    string
}

func NewHealthHandler(p Pipeline, model string) *HealthHandler {
	return &HealthHandler{pipeline: p, model: model}
}

type healthResponse struct {
	Status   string `json:"status"`
	UseModel bool   `json:"use_model"`
	Model    string `json:"model"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	RespondOK(c, healthResponse{
		Status:   "ok",
		UseModel: h.pipeline != nil && h.pipeline.ModelEnabled(),
		Model:    h.model,
	})
}

// QuizHandler serves the generate and regenerate endpoints.
type QuizHandler struct {
	pipeline Pipeline
	log      *logger.Logger
}

func NewQuizHandler(p Pipeline, log *logger.Logger) *QuizHandler {
	return &QuizHandler{pipeline: p, log: log}
}

// Pointer fields distinguish "absent" from a zero value so defaults apply
// only to omitted fields.
type generateRequest struct {
	Grade          *int     `json:"grade"`
	Skill          *string  `json:"skill"`
	Difficulty     *string  `json:"difficulty"`
	Count          *int     `json:"count"`
	UnitText       string   `json:"unitText"`
	Material       string   `json:"material"`
	PoolMultiplier *int     `json:"poolMultiplier"`
	Avoid          []string `json:"avoid"`
	Types          []string `json:"types"`
}

type generateResponse struct {
	Questions []quizgen.Question `json:"questions"`
	Warning   string             `json:"warning,omitempty"`
}

type regenerateRequest struct {
	Grade      *int     `json:"grade"`
	Skill      *string  `json:"skill"`
	Difficulty *string  `json:"difficulty"`
	UnitText   string   `json:"unitText"`
	Material   string   `json:"material"`
	Type       *string  `json:"type"`
	Avoid      []string `json:"avoid"`
}

type regenerateResponse struct {
	Question quizgen.Question `json:"question"`
}

func (h *QuizHandler) GenerateQuestions(c *gin.Context) {
	var body generateRequest
	if !bindBody(c, &body) {
		return
	}

	req := quizgen.Request{
		Grade:          intOr(body.Grade, quizgen.DefaultGrade),
		Skill:          lowerOr(body.Skill, defaultSkill),
		Difficulty:     lowerOr(body.Difficulty, defaultDifficulty),
		Count:          intOr(body.Count, defaultCount),
		Types:          body.Types,
		Material:       strings.TrimSpace(body.Material),
		UnitText:       body.UnitText,
		PoolMultiplier: intOr(body.PoolMultiplier, defaultPoolMultiplier),
		Avoid:          body.Avoid,
	}

	res := h.pipeline.Generate(c.Request.Context(), req)
	if res.Warning != "" {
		h.log.Warn("generation returned a warning",
			"request_id", res.RequestID, "returned", len(res.Questions), "warning", res.Warning)
	}

	questions := res.Questions
	if questions == nil {
		questions = []quizgen.Question{}
	}
	RespondOK(c, generateResponse{Questions: questions, Warning: res.Warning})
}

func (h *QuizHandler) RegenerateQuestion(c *gin.Context) {
	var body regenerateRequest
	if !bindBody(c, &body) {
		return
	}

	req := quizgen.RegenerateRequest{
		Grade:      intOr(body.Grade, quizgen.DefaultGrade),
		Skill:      lowerOr(body.Skill, defaultSkill),
		Difficulty: lowerOr(body.Difficulty, defaultDifficulty),
		Type:       stringOr(body.Type, string(quizgen.TypeMCQ)),
		Material:   strings.TrimSpace(body.Material),
		UnitText:   body.UnitText,
		Avoid:      body.Avoid,
	}

	q, err := h.pipeline.Regenerate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, quizgen.ErrCouldNotRegenerate) {
			RespondError(c, http.StatusBadRequest, "Could not regenerate")
			return
		}
		h.log.Error("regenerate failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "")
		return
	}
	RespondOK(c, regenerateResponse{Question: q})
}

// bindBody decodes the JSON body into dst. An empty body leaves dst at its
// zero value; malformed JSON is answered with 400.
func bindBody(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	RespondError(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	return false
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return strings.TrimSpace(*v)
}

func lowerOr(v *string, def string) string {
	return strings.ToLower(stringOr(v, def))
}
