package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

type computerRequest struct {
	Actions []platform.ComputerAction `json:"actions" binding:"required,dive"`
}

type shellRequest struct {
	Command *string `json:"command" binding:"required"`
}

type shellResponse struct {
	Output string `json:"output"`
}

type captureRequest struct {
	MaxWidth *int `json:"max_width" binding:"omitempty,min=0"`
	Quality  *int `json:"quality"   binding:"omitempty,min=0,max=255"`
	Grid     bool `json:"grid"`
}

type actRequest struct {
	Action      platform.AutopilotAction `json:"action"`
	ImageWidth  *int                     `json:"image_width"  binding:"required,min=1"`
	ImageHeight *int                     `json:"image_height" binding:"required,min=1"`
}

type actResponse struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Automation bool   `json:"automation"`
	Shell      bool   `json:"shell"`
}

// decode reads the whole body and fills obj. Anything that is not a single
// well-formed JSON value satisfying the binding tags is rejected with 400
// before any action runs.
func (s *Server) decode(c *gin.Context, obj any) bool {
	if err := decodeBody(c.Request, obj); err != nil {
		s.logger.Debug("rejecting request", "path", c.Request.URL.Path, "error", err)
		c.String(http.StatusBadRequest, bodyBadRequest)
		return false
	}
	return true
}

func decodeBody(req *http.Request, obj any) error {
	if req.Body == nil {
		return errors.New("empty body")
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}

// workContext is the context handed to automation. It keeps the request's
// values but not its cancellation, so a client that disconnects or times out
// does not interrupt work that has already been dispatched.
func workContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// fail maps an operation error onto the response contract.
func (s *Server) fail(c *gin.Context, op string, err error) {
	var perr *mainthread.PanicError
	switch {
	case errors.Is(err, automation.ErrUnavailable):
		c.String(http.StatusServiceUnavailable, bodyUnavailable)
	case errors.As(err, &perr):
		s.logger.Error("panic while executing action",
			"op", op,
			"panic", perr.Value,
			"stack", string(perr.Stack),
		)
		c.String(http.StatusInternalServerError, bodyInternal)
	case errors.Is(err, automation.ErrInvalidImageSize):
		c.String(http.StatusBadRequest, bodyBadRequest)
	default:
		s.logger.Warn("action failed", "op", op, "error", err)
		c.String(http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.PureJSON(http.StatusOK, healthResponse{
		Status:     "ok",
		Automation: s.auto.Available(),
		Shell:      s.auto.ShellAvailable(),
	})
}

func (s *Server) handleComputerPreview(c *gin.Context) {
	var req computerRequest
	if !s.decode(c, &req) {
		return
	}
	c.PureJSON(http.StatusOK, automation.BatchResponse{
		Summary: automation.BatchSummary(len(req.Actions)),
		Results: []string{},
	})
}

func (s *Server) handleComputerExecute(c *gin.Context) {
	var req computerRequest
	if !s.decode(c, &req) {
		return
	}
	resp, err := s.auto.ExecuteBatch(workContext(c), req.Actions)
	if err != nil {
		s.fail(c, "computer", err)
		return
	}
	c.PureJSON(http.StatusOK, resp)
}

func (s *Server) handleShellPreview(c *gin.Context) {
	var req shellRequest
	if !s.decode(c, &req) {
		return
	}
	c.PureJSON(http.StatusOK, shellResponse{Output: *req.Command})
}

func (s *Server) handleShellExecute(c *gin.Context) {
	var req shellRequest
	if !s.decode(c, &req) {
		return
	}
	out, err := s.auto.ExecuteShell(workContext(c), *req.Command)
	if err != nil {
		s.fail(c, "shell", err)
		return
	}
	c.PureJSON(http.StatusOK, shellResponse{Output: out})
}

func (s *Server) handleCapture(c *gin.Context) {
	var req captureRequest
	if !s.decode(c, &req) {
		return
	}
	opts := automation.CaptureOptions{
		MaxWidth: s.captureWidth,
		Quality:  s.captureQuality,
		Grid:     req.Grid,
	}
	if req.MaxWidth != nil && *req.MaxWidth > 0 {
		opts.MaxWidth = *req.MaxWidth
	}
	if req.Quality != nil && *req.Quality > 0 {
		opts.Quality = *req.Quality
	}
	res, err := s.auto.CaptureScreen(workContext(c), opts)
	if err != nil {
		s.fail(c, "capture", err)
		return
	}
	c.PureJSON(http.StatusOK, res)
}

func (s *Server) handleAct(c *gin.Context) {
	var req actRequest
	if !s.decode(c, &req) {
		return
	}
	summary, err := s.auto.ExecuteAutopilot(workContext(c), req.Action, *req.ImageWidth, *req.ImageHeight)
	if err != nil {
		s.fail(c, "autopilot", err)
		return
	}
	c.PureJSON(http.StatusOK, actResponse{Status: "ok", Summary: summary})
}

func (s *Server) handlePermissions(c *gin.Context) {
	status, err := s.auto.Permissions(workContext(c))
	if err != nil {
		s.fail(c, "permissions", err)
		return
	}
	c.PureJSON(http.StatusOK, status)
}
