package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetmate-ai/server/internal/auth"
	"github.com/meetmate-ai/server/internal/websocket"
	"github.com/meetmate-ai/server/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, meetings *usecase.MeetingService, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "meetmate-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/auth/token", func(c echo.Context) error {
		return issueToken(c, logger)
	})

	// Meeting APIs
	v1.POST("/meetings", func(c echo.Context) error {
		return createMeeting(c, meetings, logger)
	})
	v1.GET("/meetings", func(c echo.Context) error {
		return listMeetings(c, meetings, logger)
	})
	v1.GET("/meetings/:id", func(c echo.Context) error {
		return getMeeting(c, meetings, logger)
	})
	v1.DELETE("/meetings/:id", func(c echo.Context) error {
		return deleteMeeting(c, meetings, logger)
	})
	v1.GET("/meetings/:id/transcripts", func(c echo.Context) error {
		return getMeetingTranscripts(c, meetings, logger)
	})

	// Answer style APIs
	v1.POST("/styles", func(c echo.Context) error {
		return createStyle(c, meetings, logger)
	})
	v1.GET("/styles", func(c echo.Context) error {
		return listStyles(c, meetings, logger)
	})
	v1.DELETE("/styles/:id", func(c echo.Context) error {
		return deleteStyle(c, meetings, logger)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

func issueToken(c echo.Context, logger *zap.Logger) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "user_id is required",
		})
	}

	token, err := auth.GenerateUserToken(req.UserID)
	if err != nil {
		logger.Error("Failed to generate user token",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		UserID:    req.UserID,
	})
}

func createMeeting(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	var req CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	meeting, err := meetings.CreateMeeting(c.Request().Context(), req.Title, req.Language)
	if err != nil {
		logger.Error("Failed to create meeting", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create meeting",
		})
	}

	return c.JSON(http.StatusCreated, meeting)
}

func listMeetings(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	list, err := meetings.ListMeetings(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list meetings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list meetings",
		})
	}
	return c.JSON(http.StatusOK, list)
}

func getMeeting(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	meeting, err := meetings.GetMeeting(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrMeetingNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "meeting_not_found",
				Message: "Meeting does not exist",
			})
		}
		logger.Error("Failed to get meeting", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to look up meeting",
		})
	}
	return c.JSON(http.StatusOK, meeting)
}

func deleteMeeting(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	if err := meetings.DeleteMeeting(c.Request().Context(), c.Param("id")); err != nil {
		logger.Warn("Failed to delete meeting", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "meeting_not_found",
			Message: "Meeting does not exist",
		})
	}
	return c.NoContent(http.StatusNoContent)
}

func getMeetingTranscripts(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	records, err := meetings.MeetingTranscripts(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrMeetingNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "meeting_not_found",
				Message: "Meeting does not exist",
			})
		}
		logger.Error("Failed to list transcripts", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list transcripts",
		})
	}
	return c.JSON(http.StatusOK, records)
}

func createStyle(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	var req CreateStyleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Name == "" || req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Name and prompt are required",
		})
	}

	style, err := meetings.CreateStyle(c.Request().Context(), req.Name, req.Prompt)
	if err != nil {
		logger.Error("Failed to create style", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create style",
		})
	}

	return c.JSON(http.StatusCreated, style)
}

func listStyles(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	list, err := meetings.ListStyles(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list styles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list styles",
		})
	}
	return c.JSON(http.StatusOK, list)
}

func deleteStyle(c echo.Context, meetings *usecase.MeetingService, logger *zap.Logger) error {
	if err := meetings.DeleteStyle(c.Request().Context(), c.Param("id")); err != nil {
		logger.Warn("Failed to delete style", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "style_not_found",
			Message: "Style does not exist",
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// websocketWithAuth handles WebSocket connections with JWT authentication.
// The token comes from the Authorization header, or from the token query
// parameter for browser clients that cannot set headers on the upgrade
// request.
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	if claims.UserID == "" {
		logger.Error("WebSocket connection rejected: missing user ID in token")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "User ID not found in token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("user_id", claims.UserID))

	return websocket.HandleWebSocket(hub, c, claims.UserID, logger)
}
