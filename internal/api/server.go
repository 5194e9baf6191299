// Package api exposes stored notebooks and the generation pipeline over
// HTTP. It is a thin layer; all business logic lives in pipeline and store.
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"noteforge/quill/internal/export"
	"noteforge/quill/internal/pipeline"
	"noteforge/quill/internal/store"
)

// GenerateFunc produces a notebook from a prompt.
type GenerateFunc func(ctx context.Context, prompt string, files []pipeline.FileRef) (*pipeline.Notebook, error)

// RefineFunc rewrites an existing notebook under an instruction.
type RefineFunc func(ctx context.Context, nb *pipeline.Notebook, instruction string) (*pipeline.Notebook, error)

// Server wires the notebook store and pipeline into a gin router.
type Server struct {
	store    *store.Store
	generate GenerateFunc
	refine   RefineFunc

	// genMu serializes generation and refinement so a single upstream
	// quota is not burned by concurrent requests.
	genMu sync.Mutex
}

// NewServer builds a Server around an open store and pipeline entry points.
func NewServer(st *store.Store, generate GenerateFunc, refine RefineFunc) *Server {
	return &Server{store: st, generate: generate, refine: refine}
}

// Router builds the HTTP route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/notebooks", s.handleList)
	v1.POST("/notebooks", s.handleGenerate)
	v1.GET("/notebooks/:id", s.handleGet)
	v1.POST("/notebooks/:id/refine", s.handleRefine)
	v1.DELETE("/notebooks/:id", s.handleDelete)
	v1.GET("/notebooks/:id/export", s.handleExport)

	return r
}

func (s *Server) handleHealth(ctx *gin.Context) {
	count, err := s.store.Count()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "notebooks": count})
}

func (s *Server) handleList(ctx *gin.Context) {
	notebooks, err := s.store.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "listing notebooks failed"})
		return
	}
	if notebooks == nil {
		notebooks = []store.SavedNotebook{}
	}
	ctx.JSON(http.StatusOK, gin.H{"notebooks": notebooks})
}

func (s *Server) handleGet(ctx *gin.Context) {
	nb, ok := s.lookup(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, nb)
}

type generateRequest struct {
	Prompt string             `json:"prompt" binding:"required"`
	Files  []pipeline.FileRef `json:"files"`
}

func (s *Server) handleGenerate(ctx *gin.Context) {
	var req generateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	s.genMu.Lock()
	nb, err := s.generate(ctx.Request.Context(), req.Prompt, req.Files)
	s.genMu.Unlock()
	if err != nil {
		s.renderPipelineError(ctx, err)
		return
	}

	if err := s.store.Save(nb); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "saving notebook failed"})
		return
	}
	ctx.JSON(http.StatusCreated, nb)
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

func (s *Server) handleRefine(ctx *gin.Context) {
	existing, ok := s.lookup(ctx)
	if !ok {
		return
	}

	var req refineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	s.genMu.Lock()
	refined, err := s.refine(ctx.Request.Context(), &existing.Notebook, req.Instruction)
	s.genMu.Unlock()
	if err != nil {
		s.renderPipelineError(ctx, err)
		return
	}

	if err := s.store.Save(refined); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "saving notebook failed"})
		return
	}
	ctx.JSON(http.StatusCreated, refined)
}

func (s *Server) handleDelete(ctx *gin.Context) {
	err := s.store.Delete(ctx.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "notebook not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "deleting notebook failed"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (s *Server) handleExport(ctx *gin.Context) {
	nb, ok := s.lookup(ctx)
	if !ok {
		return
	}

	// Documents are small; rendering to a buffer first lets a failed render
	// surface as an error response instead of a truncated 200.
	var buf bytes.Buffer
	switch format := ctx.DefaultQuery("format", "md"); format {
	case "md", "markdown":
		ctx.Data(http.StatusOK, "text/markdown; charset=utf-8",
			[]byte(export.Markdown(&nb.Notebook)))
		return
	case "html":
		if err := export.HTML(&nb.Notebook, &buf); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "rendering html failed"})
			return
		}
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	case "pdf":
		if err := export.PDF(&nb.Notebook, &buf); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "rendering pdf failed"})
			return
		}
		ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown format " + format})
	}
}

// lookup resolves the :id path param, writing the error response itself
// when the notebook cannot be served.
func (s *Server) lookup(ctx *gin.Context) (*store.SavedNotebook, bool) {
	nb, err := s.store.Get(ctx.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "notebook not found"})
		return nil, false
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "loading notebook failed"})
		return nil, false
	}
	return nb, true
}

// renderPipelineError maps pipeline failures onto HTTP statuses. Quota gets
// its own status so clients can back off rather than retry immediately.
func (s *Server) renderPipelineError(ctx *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, pipeline.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, pipeline.ErrMissingCredential):
		status = http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	body := gin.H{"error": err.Error()}
	if hint := pipeline.Hint(err); hint != "" {
		body["hint"] = hint
	}
	ctx.JSON(status, body)
}
