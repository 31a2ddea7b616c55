package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/sutraflow/sutra/pkg/persistence"
	"github.com/sutraflow/sutra/pkg/registry"
	"github.com/sutraflow/sutra/pkg/workflow"
)

// problem writes an RFC 7807 response for the current request path.
func problem(c fiber.Ctx, status int, problemType, detail string) error {
	body := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	c.Set(fiber.HeaderContentType, problems.ProblemMediaType)

	return c.Status(status).JSON(body)
}

func badRequest(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusBadRequest, "validation_error", detail)
}

func notFound(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusNotFound, "not_found", detail)
}

func internalError(c fiber.Ctx, err error) error {
	return problem(c, fiber.StatusInternalServerError, "internal_error", err.Error())
}

// handleError maps domain errors onto problem responses.
func handleError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow not found")

	case persistence.IsExecutionNotFound(err), errors.Is(err, workflow.ErrExecutionNotFound):
		return notFound(c, "execution not found")

	case errors.Is(err, registry.ErrNotRegistered):
		return notFound(c, err.Error())

	default:
		return internalError(c, err)
	}
}
