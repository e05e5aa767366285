package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/matthieukhl/quotedesk/internal/backend"
	"github.com/matthieukhl/quotedesk/internal/export"
	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/inventory"
	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/view"
	"go.uber.org/zap"
)

var errNotOnIntake = errors.New("a quotation is open; go back to intake first")

type Server struct {
	router   *gin.Engine
	session  *Session
	inv      *inventory.Client
	exporter *export.Exporter
	validate *validatorv10.Validate
	log      *zap.Logger
}

// NewServer creates a new server instance around one session
func NewServer(session *Session, inv *inventory.Client, exporter *export.Exporter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	server := &Server{
		router:   router,
		session:  session,
		inv:      inv,
		exporter: exporter,
		validate: newValidator(),
		log:      log.Named("server"),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		sess := api.Group("/session")
		{
			sess.GET("", s.getSession)
			sess.POST("/intake", s.submitIntake)
			sess.POST("/blank", s.openBlank)
			sess.POST("/back", s.back)
			sess.POST("/items", s.addItem)
			sess.PATCH("/items/:id", s.updateItem)
			sess.DELETE("/items/:id", s.removeItem)
			sess.PATCH("/customer", s.updateCustomer)
			sess.POST("/save", s.save)
			sess.POST("/edit", s.edit)
			sess.POST("/pdf", s.exportPDF)
		}

		api.GET("/inventory", s.listInventory)
		api.POST("/inventory", s.createInventory)
		api.DELETE("/inventory/:id", s.deleteInventory)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// requestLogger replaces gin's default logger with zap
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "quotedesk",
	})
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

type intakeRequest struct {
	RawText string `json:"raw_text"`
}

func (s *Server) submitIntake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := s.session.Submit(c.Request.Context(), req.RawText)
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	if failed, ok := st.(intake.Failed); ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": failed.Message})
		return
	}
	c.JSON(http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) openBlank(c *gin.Context) {
	snap, err := s.session.Do(func(ctrl *view.Controller, h *intake.Handoff) error {
		if _, ok := h.State().(intake.Pending); ok {
			return intake.ErrPending
		}
		h.Edit()
		ctrl.OpenBlank()
		return nil
	})
	s.respond(c, http.StatusCreated, snap, err)
}

func (s *Server) back(c *gin.Context) {
	snap, err := s.session.Do(func(ctrl *view.Controller, _ *intake.Handoff) error {
		ctrl.Back()
		return nil
	})
	s.respond(c, http.StatusOK, snap, err)
}

func (s *Server) addItem(c *gin.Context) {
	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		_, err := q.AddItem()
		return err
	})
	s.respond(c, http.StatusCreated, snap, err)
}

type updateItemRequest struct {
	Field string          `json:"field" validate:"required,oneof=description quantity rate"`
	Value json.RawMessage `json:"value" validate:"required"`
}

func (s *Server) updateItem(c *gin.Context) {
	var req updateItemRequest
	if !bindBody(c, &req, s.validate) {
		return
	}

	field := quotation.Field(req.Field)
	value, err := decodeFieldValue(field, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		return q.UpdateItem(id, field, value)
	})
	s.respond(c, http.StatusOK, snap, err)
}

// decodeFieldValue keeps JSON types strict: quantities must be integers
func decodeFieldValue(field quotation.Field, raw json.RawMessage) (any, error) {
	switch field {
	case quotation.FieldDescription:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: description must be a string", quotation.ErrInvalidValue)
		}
		return v, nil
	case quotation.FieldQuantity:
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: quantity must be an integer", quotation.ErrInvalidValue)
		}
		return v, nil
	case quotation.FieldRate:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: rate must be a number", quotation.ErrInvalidValue)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", quotation.ErrUnknownField, field)
	}
}

func (s *Server) removeItem(c *gin.Context) {
	id := c.Param("id")
	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		return q.RemoveItem(id)
	})
	s.respond(c, http.StatusOK, snap, err)
}

type customerRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,max=254"`
	Date    *string `json:"date"`
}

// updateCustomer applies only the fields present in the body
func (s *Server) updateCustomer(c *gin.Context) {
	var req customerRequest
	if !bindBody(c, &req, s.validate) {
		return
	}

	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		if req.Date != nil {
			if err := q.SetDate(*req.Date); err != nil {
				return err
			}
		}
		cust := q.Customer()
		if req.Name != nil {
			cust.Name = *req.Name
		}
		if req.Address != nil {
			cust.Address = *req.Address
		}
		if req.Phone != nil {
			cust.Phone = *req.Phone
		}
		if req.Email != nil {
			cust.Email = *req.Email
		}
		return q.SetCustomer(cust)
	})
	s.respond(c, http.StatusOK, snap, err)
}

func (s *Server) save(c *gin.Context) {
	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		q.Save()
		return nil
	})
	s.respond(c, http.StatusOK, snap, err)
}

func (s *Server) edit(c *gin.Context) {
	snap, err := s.session.WithQuotation(func(q *quotation.Quotation) error {
		q.Edit()
		return nil
	})
	s.respond(c, http.StatusOK, snap, err)
}

// exportPDF stores the document in the export directory and streams it back
func (s *Server) exportPDF(c *gin.Context) {
	number, pdfReq, err := s.session.PDFRequest()
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}

	path, err := s.exporter.ExportRequest(c.Request.Context(), number, pdfReq)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": export.ErrExportFailed.Error()})
		return
	}

	data, err := s.exporter.ReadFile(path)
	if err != nil {
		s.log.Error("failed to read exported document", zap.String("file", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) listInventory(c *gin.Context) {
	if err := s.inv.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.inv.Items())
}

func (s *Server) createInventory(c *gin.Context) {
	var draft inventory.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.inv.Create(c.Request.Context(), draft)
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) deleteInventory(c *gin.Context) {
	if err := s.inv.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) respond(c *gin.Context, status int, body sessionView, err error) {
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(status, body)
}

// writeError maps domain errors onto HTTP statuses
func (s *Server) writeError(c *gin.Context, err error, fallback int) {
	status := fallback
	var se *backend.StatusError
	switch {
	case errors.Is(err, intake.ErrBlankText),
		errors.Is(err, inventory.ErrInvalidDraft),
		errors.Is(err, quotation.ErrInvalidValue),
		errors.Is(err, quotation.ErrUnknownField):
		status = http.StatusBadRequest
	case errors.Is(err, errNoQuotation),
		errors.Is(err, errNotOnIntake),
		errors.Is(err, intake.ErrPending),
		errors.Is(err, quotation.ErrLocked):
		status = http.StatusConflict
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		status = http.StatusNotFound
	case errors.As(err, &se):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
