package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// TestRespondError verifies the engine error kinds map onto the right HTTP
// statuses and stay distinguishable by the error code in the body.
func TestRespondError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "validation failure returns 422 with field errors",
			err: &workflow.ValidationError{Errors: []workflow.FieldError{
				{Field: "customer_name", Message: "Customer Name is required"},
			}},
			expectedStatus: fiber.StatusUnprocessableEntity,
			expectedCode:   "validation_failed",
		},
		{
			name: "invalid transition returns 409",
			err: &workflow.InvalidTransitionError{
				SubmissionID: "sub-1", Status: models.StatusApproved, Action: "submit",
			},
			expectedStatus: fiber.StatusConflict,
			expectedCode:   "invalid_transition",
		},
		{
			name:           "not found returns 404",
			err:            &workflow.NotFoundError{Kind: "submission", ID: "missing"},
			expectedStatus: fiber.StatusNotFound,
			expectedCode:   "not_found",
		},
		{
			name:           "forbidden returns 403",
			err:            &workflow.ForbiddenError{Action: "edit submission", Role: models.RoleViewer},
			expectedStatus: fiber.StatusForbidden,
			expectedCode:   "forbidden",
		},
		{
			name:           "unknown errors stay opaque as 500",
			err:            errors.New("pq: connection reset"),
			expectedStatus: fiber.StatusInternalServerError,
			expectedCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, tt.err)
			})

			// Act
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			// Assert
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var parsed map[string]any
			require.NoError(t, json.Unmarshal(body, &parsed))
			assert.Equal(t, tt.expectedCode, parsed["error"])
		})
	}
}

// TestRespondErrorValidationCarriesAllFields verifies every field error
// reaches the client in one response.
func TestRespondErrorValidationCarriesAllFields(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, &workflow.ValidationError{Errors: []workflow.FieldError{
			{Field: "customer_name", Message: "Customer Name is required"},
			{Field: "email", Message: "Email is invalid"},
		}})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Fields []workflow.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Len(t, parsed.Fields, 2)
	assert.Equal(t, "customer_name", parsed.Fields[0].Field)
	assert.Equal(t, "email", parsed.Fields[1].Field)
}
