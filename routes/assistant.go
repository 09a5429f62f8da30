package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fincore-assistant/models"
	"fincore-assistant/services"
	"fincore-assistant/utils"
)

func SetupAssistantRoutes(router *gin.Engine, ragService *services.RAGService) {
	assistant := router.Group("/api/assistant")

	assistant.POST("/query", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		resp, err := ragService.Answer(c.Request.Context(), req.Query, req.UserID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadGateway, "completion_failed",
				"Could not generate a response", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
