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

type stubResultService struct {
	response dto.ResultResponse
}

func (s stubResultService) Compute(context.Context, uint, uint, service.ActivityActor) (dto.ResultResponse, error) {
	return s.response, nil
}

func (s stubResultService) GetByPair(context.Context, uint, uint) (dto.ResultResponse, error) {
	return s.response, nil
}

func TestFinalResultContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "final_result.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	response := dto.ResultResponse{
		ID:              1,
		ExamID:          1,
		StudentID:       7,
		TheoryScore:     30,
		Morality:        80,
		PracticalMethod: 50,
		Technique:       75,
		Physical:        70,
		Mental:          65,
		MethodTotal:     80,
		TotalScore:      365,
		PassThreshold:   300,
		Passed:          true,
		DecidedAt:       time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	resultHandler := handler.NewResultHandler(stubResultService{response: response}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/results", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	resultHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results?exam_id=1&student_id=7", nil)
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
