package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redlinehq/redline/pkg/model"
	"github.com/redlinehq/redline/pkg/usecase/review"
	"github.com/redlinehq/redline/pkg/utils/logging"
)

// Server exposes the suggestion lifecycle over HTTP for the UI shell.
// It holds no state of its own: sessions and suggestions live in the
// use case's session store, snippets in the durable repository.
type Server struct {
	uc  *review.UseCase
	app *fiber.App
}

// New creates a server and registers its routes
func New(uc *review.UseCase) *Server {
	s := &Server{
		uc: uc,
		app: fiber.New(fiber.Config{
			BodyLimit: 32 * 1024 * 1024,
		}),
	}

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	api.Post("/sessions", s.createSession)
	api.Post("/sessions/:id/upload", s.upload)
	api.Get("/sessions/:id/suggestions", s.listSuggestions)
	api.Post("/sessions/:id/suggestions/:sid/accept", s.accept)
	api.Post("/sessions/:id/suggestions/:sid/ignore", s.ignoreOnce)
	api.Post("/sessions/:id/suggestions/:sid/ignore-forever", s.ignoreForever)
	api.Post("/snippets", s.submitManualChange)
	api.Get("/snippets", s.listSnippets)

	return s
}

// App returns the underlying fiber app, used by tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on the given address until shutdown
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) createSession(c *fiber.Ctx) error {
	session := s.uc.Sessions().Create()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
	})
}

func (s *Server) session(c *fiber.Ctx) (*model.Session, error) {
	session, err := s.uc.Sessions().Get(model.SessionID(c.Params("id")))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return session, nil
}

func (s *Server) upload(c *fiber.Ctx) error {
	session, err := s.session(c)
	if session == nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "multipart field \"file\" is required",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cannot read uploaded file",
		})
	}
	defer f.Close()

	suggestions, err := s.uc.ProcessUpload(c.Context(), session, fileHeader.Filename, f)
	if err != nil {
		logging.From(c.Context()).Error("upload processing failed", "session", session.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resp := fiber.Map{"suggestions": visible(suggestions)}
	if session.IntakeErr != "" {
		// intake failure is informational, not an HTTP error
		resp["intake_error"] = session.IntakeErr
	}
	return c.JSON(resp)
}

func (s *Server) listSuggestions(c *fiber.Ctx) error {
	session, err := s.session(c)
	if session == nil {
		return err
	}

	resp := fiber.Map{"suggestions": session.Visible()}
	if session.IntakeErr != "" {
		resp["intake_error"] = session.IntakeErr
	}
	return c.JSON(resp)
}

type acceptRequest struct {
	FinalText string `json:"final_text"`
}

func (s *Server) accept(c *fiber.Ctx) error {
	session, err := s.session(c)
	if session == nil {
		return err
	}

	id, err := strconv.Atoi(c.Params("sid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid suggestion id"})
	}

	var req acceptRequest
	if err := c.BodyParser(&req); err != nil || req.FinalText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "final_text is required"})
	}

	if err := s.uc.Accept(c.Context(), session, id, req.FinalText); err != nil {
		return s.decisionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "accepted"})
}

func (s *Server) ignoreOnce(c *fiber.Ctx) error {
	session, err := s.session(c)
	if session == nil {
		return err
	}

	id, err := strconv.Atoi(c.Params("sid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid suggestion id"})
	}

	if err := s.uc.IgnoreOnce(session, id); err != nil {
		return s.decisionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ignored"})
}

func (s *Server) ignoreForever(c *fiber.Ctx) error {
	session, err := s.session(c)
	if session == nil {
		return err
	}

	id, err := strconv.Atoi(c.Params("sid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid suggestion id"})
	}

	if err := s.uc.IgnoreForever(c.Context(), session, id); err != nil {
		return s.decisionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ignored_forever"})
}

type manualChangeRequest struct {
	Original string `json:"original"`
	Modified string `json:"modified"`
}

func (s *Server) submitManualChange(c *fiber.Ctx) error {
	var req manualChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.uc.SubmitManualChange(c.Context(), req.Original, req.Modified); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "recorded"})
}

func (s *Server) listSnippets(c *fiber.Ctx) error {
	snippets, err := s.uc.ListSnippets(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type snippetView struct {
		ID       string `json:"id"`
		Original string `json:"original"`
		Modified string `json:"modified,omitempty"`
		Ignored  bool   `json:"ignored"`
	}

	views := make([]snippetView, 0, len(snippets))
	for _, sn := range snippets {
		views = append(views, snippetView{
			ID:       string(sn.ID),
			Original: sn.Original,
			Modified: sn.Modified,
			Ignored:  sn.Ignored,
		})
	}
	return c.JSON(fiber.Map{"snippets": views})
}

func (s *Server) decisionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, model.ErrSuggestionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "suggestion not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func visible(suggestions []*model.Suggestion) []*model.Suggestion {
	out := make([]*model.Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if !sg.Hidden {
			out = append(out, sg)
		}
	}
	return out
}
