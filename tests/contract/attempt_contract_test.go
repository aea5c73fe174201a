package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/kenshokan/dojang-api/internal/dto"
	"github.com/kenshokan/dojang-api/internal/handler"
	"github.com/kenshokan/dojang-api/internal/service"
)

type stubAttemptService struct {
	response dto.AttemptResponse
}

func (s stubAttemptService) Start(context.Context, uint, dto.StartAttemptRequest) (dto.AttemptResponse, error) {
	return s.response, nil
}

func (s stubAttemptService) RecordAnswer(context.Context, uint, uint, dto.RecordAnswerRequest) (dto.AttemptResponse, error) {
	return s.response, nil
}

func (s stubAttemptService) RecordFocusLoss(context.Context, uint, uint) (dto.AttemptResponse, error) {
	return s.response, nil
}

func (s stubAttemptService) Submit(context.Context, uint, uint, service.SubmitActor) (dto.AttemptResponse, error) {
	return s.response, nil
}

func (s stubAttemptService) GetByPair(context.Context, uint, uint) (dto.AttemptResponse, error) {
	return s.response, nil
}

func TestAttemptSessionContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "attempt_session.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(25 * time.Minute)
	selected := 2
	answerScore := 10.0
	autoScore := 10.0

	response := dto.AttemptResponse{
		ID:               4,
		ExamID:           1,
		StudentID:        7,
		State:            "closed",
		StartedAt:        started,
		Deadline:         started.Add(30 * time.Minute),
		RemainingSeconds: 0,
		SubmittedAt:      &submitted,
		FocusLosses:      1,
		AutoScore:        &autoScore,
		Questions: []dto.AttemptQuestionView{
			{ID: 1, Type: "mcq", Prompt: "Name the opening stance.", Choices: []string{"ap seogi", "juchum seogi", "dwit kubi"}, MaxScore: 10},
			{ID: 2, Type: "essay", Prompt: "Describe the meaning of the belt.", MaxScore: 20},
		},
		Answers: []dto.AttemptAnswerResponse{
			{QuestionID: 1, SelectedIndex: &selected, Score: &answerScore},
			{QuestionID: 2, EssayText: "The belt marks the journey.", Score: nil},
		},
	}

	attemptHandler := handler.NewAttemptHandler(stubAttemptService{response: response}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/attempts", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	attemptHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attempts?exam_id=1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
