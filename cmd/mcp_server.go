package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pluxuryv8/astra-bridge/internal/automation"
	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	"github.com/pluxuryv8/astra-bridge/internal/platform"
	"github.com/pluxuryv8/astra-bridge/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the bridge actions as tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the bridge
actions as tools. AI agents can call tools directly without the HTTP bridge.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  astra-bridge mcp
  astra-bridge mcp --transport streamable-http --port 8080`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	mcpCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport       string
	Port            int
	ShutdownTimeout time.Duration
}

// mcpServer wraps the MCP server with the automation service.
type mcpServer struct {
	svc *automation.Service
	// mu serializes tool calls; they share one keyboard and pointer.
	mu  sync.Mutex
	mcp *mcpserver.MCPServer

	captureWidth   int
	captureQuality int
}

func runMCP(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	cfg := MCPConfig{
		Transport:       transport,
		Port:            port,
		ShutdownTimeout: appConfig.ShutdownTimeout,
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := mainthread.ForPlatform(platform.RequiresMainThread)
	svc, err := newService(appConfig, exec)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	srv := newMCPServer(svc)
	srv.captureWidth = appConfig.Capture.MaxWidth
	srv.captureQuality = appConfig.Capture.Quality

	return runWithDispatcher(ctx, exec, func(ctx context.Context) error {
		return srv.serve(ctx, cfg)
	})
}

func (c MCPConfig) validate() error {
	switch c.Transport {
	case "stdio", "streamable-http":
		return nil
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", c.Transport)
	}
}

// newMCPServer creates and configures an MCP server with all bridge tools.
func newMCPServer(svc *automation.Service) *mcpServer {
	s := &mcpServer{
		svc:            svc,
		captureWidth:   automation.DefaultCaptureWidth,
		captureQuality: automation.DefaultCaptureQuality,
	}
	s.mcp = mcpserver.NewMCPServer(
		"astra-bridge",
		version.Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// serve runs the configured transport until ctx is done.
func (s *mcpServer) serve(ctx context.Context, cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errc := make(chan error, 1)
		go func() { errc <- httpServer.Start(fmt.Sprintf("127.0.0.1:%d", cfg.Port)) }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// computer_execute
	s.mcp.AddTool(
		mcp.NewTool("computer_execute",
			mcp.WithDescription("Run a batch of mouse and keyboard actions in order. Each action reports its own result; a failed action does not stop the batch."),
			mcp.WithArray("actions",
				mcp.Description("Array of {action, coordinate, start_coordinate, text, scroll_direction, scroll_amount, key, region} objects"),
				mcp.Required(),
			),
		),
		s.handleComputerExecute,
	)

	// shell_execute
	s.mcp.AddTool(
		mcp.NewTool("shell_execute",
			mcp.WithDescription("Run a shell command and return its combined output"),
			mcp.WithString("command", mcp.Description("Command line for the platform shell"), mcp.Required()),
		),
		s.handleShellExecute,
	)

	// autopilot_capture
	s.mcp.AddTool(
		mcp.NewTool("autopilot_capture",
			mcp.WithDescription("Capture the main display as a downscaled JPEG, with the true screen size for coordinate mapping"),
			mcp.WithNumber("max_width", mcp.Description("Maximum image width in pixels (default: 1280)")),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 60)")),
			mcp.WithBoolean("grid", mcp.Description("Overlay a labelled coordinate grid")),
		),
		s.handleCapture,
	)

	// autopilot_act
	s.mcp.AddTool(
		mcp.NewTool("autopilot_act",
			mcp.WithDescription("Perform one action whose coordinates refer to a previously captured image"),
			mcp.WithObject("action",
				mcp.Description("{type, x, y, start_x, start_y, end_x, end_y, text, keys, dy, button, ms}; type is one of move_mouse, click, double_click, drag, type, key, scroll, wait, done"),
				mcp.Required(),
			),
			mcp.WithNumber("image_width", mcp.Description("Width of the captured image"), mcp.Required()),
			mcp.WithNumber("image_height", mcp.Description("Height of the captured image"), mcp.Required()),
		),
		s.handleAct,
	)

	// permissions
	s.mcp.AddTool(
		mcp.NewTool("permissions",
			mcp.WithDescription("Check whether screen recording and accessibility permissions are granted"),
		),
		s.handlePermissions,
	)
}

// toolError converts an automation error into a tool error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, automation.ErrUnavailable):
		return mcp.NewToolResultError("UNAVAILABLE: " + err.Error())
	case errors.Is(err, mainthread.ErrPanic):
		logger.Error("panic in MCP tool", "error", err)
		return mcp.NewToolResultError("autopilot internal error")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func toText(v any) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

// decodeParam re-encodes a loosely typed tool argument into dst and applies
// the same binding rules as the HTTP bridge.
func decodeParam(params map[string]interface{}, key string, dst any) error {
	raw, ok := params[key]
	if !ok {
		return fmt.Errorf("%s parameter is required", key)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func (s *mcpServer) handleComputerExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var batch struct {
		Actions []platform.ComputerAction `json:"actions" binding:"required,dive"`
	}
	if err := decodeParam(request.GetArguments(), "actions", &batch.Actions); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := binding.Validator.ValidateStruct(&batch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid actions: %v", err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.svc.ExecuteBatch(ctx, batch.Actions)
	if err != nil {
		return toolError(err), nil
	}
	return toText(resp), nil
}

func (s *mcpServer) handleShellExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if _, ok := params["command"]; !ok {
		return mcp.NewToolResultError("command parameter is required"), nil
	}
	command := stringParam(params, "command", "")

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.svc.ExecuteShell(ctx, command)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *mcpServer) handleCapture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := automation.CaptureOptions{
		MaxWidth: intParam(params, "max_width", 0),
		Quality:  intParam(params, "quality", 0),
		Grid:     boolParam(params, "grid", false),
	}
	if opts.MaxWidth < 0 || opts.Quality < 0 || opts.Quality > 100 {
		return mcp.NewToolResultError("max_width must be >= 0 and quality 1-100"), nil
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = s.captureWidth
	}
	if opts.Quality == 0 {
		opts.Quality = s.captureQuality
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.svc.CaptureScreen(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}
	meta := fmt.Sprintf("width: %d\nheight: %d\nscreen_width: %d\nscreen_height: %d\nformat: %s\n",
		res.Width, res.Height, res.ScreenWidth, res.ScreenHeight, res.Format)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: meta,
			},
			mcp.ImageContent{
				Type:     "image",
				Data:     res.ImageBase64,
				MIMEType: "image/jpeg",
			},
		},
	}, nil
}

func (s *mcpServer) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	var action platform.AutopilotAction
	if err := decodeParam(params, "action", &action); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	imageW := intParam(params, "image_width", 0)
	imageH := intParam(params, "image_height", 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.svc.ExecuteAutopilot(ctx, action, imageW, imageH)
	if err != nil {
		return toolError(err), nil
	}
	return toText(map[string]string{"status": "ok", "summary": summary}), nil
}

func (s *mcpServer) handlePermissions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.svc.Permissions(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return toText(status), nil
}
