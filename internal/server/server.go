package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"certroster/internal"
	"certroster/internal/crm"
	"certroster/internal/roster"
	"certroster/internal/storage"
)

type RosterAssembler interface {
	Assemble(ctx context.Context, dealID string) (internal.RosterResult, error)
}

type Server struct {
	assembler RosterAssembler
	db        *storage.DB
}

func New(assembler RosterAssembler, db *storage.DB) *Server {
	return &Server{assembler: assembler, db: db}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/deals/:dealId/roster", s.handleRoster)
	r.POST("/api/students/normalize", s.handleNormalizeStudents)

	return r
}

// handleNormalizeStudents runs document-extraction output through the same
// normalization as note-parsed rosters, so the front-end gets identical
// records from both paths.
func (s *Server) handleNormalizeStudents(c *gin.Context) {
	var payload struct {
		Students []roster.ExtractedStudent `json:"students"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No se ha podido leer la lista de alumnos.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roster.NormalizeExtracted(payload.Students),
	})
}

func (s *Server) handleRoster(c *gin.Context) {
	dealID := strings.TrimSpace(c.Param("dealId"))
	if dealID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Debes indicar un número de presupuesto.",
		})
		return
	}

	start := time.Now()
	result, err := s.assembler.Assemble(c.Request.Context(), dealID)
	if err != nil {
		status, message := translateError(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	if s.db != nil {
		totalMs := float64(time.Since(start).Milliseconds())
		if _, err := s.db.InsertDealRun(dealID, result, totalMs); err != nil {
			log.Printf("deal run bookkeeping failed for %s: %v", dealID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// translateError maps pipeline failures to the Spanish user-facing messages
// the front-end shows verbatim.
func translateError(err error) (int, string) {
	status := http.StatusInternalServerError
	original := err.Error()

	var apiErr *crm.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		original = apiErr.Message
	}

	switch status {
	case http.StatusNotFound:
		return status, "No hemos encontrado el presupuesto solicitado."
	case http.StatusUnauthorized:
		return status, "Acceso no autorizado. Revisa la clave de la API de Pipedrive."
	case http.StatusForbidden:
		return status, "Acceso denegado. Comprueba los permisos del token de Pipedrive."
	case http.StatusTooManyRequests:
		return status, "Hemos alcanzado el límite de peticiones de Pipedrive. Inténtalo de nuevo en unos minutos."
	}

	lowered := strings.ToLower(original)
	switch {
	case strings.Contains(lowered, "not found"):
		return status, "No hemos encontrado el presupuesto solicitado."
	case strings.Contains(lowered, "token"):
		return status, "Hay un problema con el token de Pipedrive. Revisa su configuración."
	case strings.Contains(lowered, "rate limit"):
		return status, "Hemos alcanzado el límite de peticiones de Pipedrive. Inténtalo de nuevo en unos minutos."
	}

	if strings.TrimSpace(original) != "" {
		return status, "No se ha podido completar la operación. Detalle: " + original
	}
	return status, "No se ha podido completar la operación con Pipedrive."
}
