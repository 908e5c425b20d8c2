package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/config"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/credstore"
	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// UnbrowseServer exposes the ability execution engine over MCP. Tool handlers
// reach the catalog, credential store and engine through the api handler
// registry; the server itself owns only transport lifecycle and the user
// encryption context.
type UnbrowseServer struct {
	config config.ServerConfig
	userID string
	cipher *credstore.Cipher

	server *server.MCPServer

	// Transport-specific servers
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	mu         sync.RWMutex
}

// NewUnbrowseServer creates a new MCP server for the given user context.
// cipher encrypts credentials supplied through the credential store tool.
func NewUnbrowseServer(serverConfig config.ServerConfig, userID string, cipher *credstore.Cipher) *UnbrowseServer {
	return &UnbrowseServer{
		config: serverConfig,
		userID: userID,
		cipher: cipher,
	}
}

// Start starts the MCP server on the configured transport.
func (u *UnbrowseServer) Start(ctx context.Context, version string) error {
	u.mu.Lock()
	if u.server != nil {
		u.mu.Unlock()
		return fmt.Errorf("unbrowse server already started")
	}

	u.ctx, u.cancelFunc = context.WithCancel(ctx)

	mcpServer := server.NewMCPServer(
		"unbrowse",
		version,
		server.WithToolCapabilities(true),
	)
	mcpServer.AddTools(u.createTools()...)
	u.server = mcpServer
	u.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", u.config.Host, u.config.Port)

	switch u.config.Transport {
	case config.MCPTransportStreamableHTTP:
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		u.streamableHTTPServer = server.NewStreamableHTTPServer(u.server)
		streamableServer := u.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Server", err, "Streamable HTTP server error")
			}
		}()

	case config.MCPTransportStdio:
		fallthrough
	default:
		logging.Info("Server", "Starting MCP server with stdio transport")
		u.stdioServer = server.NewStdioServer(u.server)
		stdioServer := u.stdioServer
		go func() {
			if err := stdioServer.Listen(u.ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Server", err, "Stdio server error")
			}
		}()
	}

	return nil
}

// Stop stops the MCP server and shuts down the active transport.
func (u *UnbrowseServer) Stop(ctx context.Context) error {
	u.mu.Lock()
	if u.server == nil {
		u.mu.Unlock()
		return fmt.Errorf("unbrowse server not started")
	}

	logging.Info("Server", "Stopping MCP server")

	cancelFunc := u.cancelFunc
	streamableServer := u.streamableHTTPServer
	u.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down streamable HTTP server")
		}
	}

	// Stdio server stops on context cancellation, no explicit shutdown needed.

	u.mu.Lock()
	u.server = nil
	u.streamableHTTPServer = nil
	u.stdioServer = nil
	u.mu.Unlock()

	return nil
}
