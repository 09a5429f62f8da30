package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fincore-assistant/services"
	"fincore-assistant/utils"
)

func SetupAdminRoutes(router *gin.Engine, scheduler *services.JobScheduler, indexer *services.Indexer) {
	admin := router.Group("/api/admin")

	admin.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": scheduler.Status()})
	})

	admin.POST("/jobs/:name/trigger", func(c *gin.Context) {
		name := c.Param("name")
		if err := scheduler.TriggerNow(name); err != nil {
			utils.RespondWithNotFound(c, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"job": name, "triggered": true})
	})

	admin.POST("/jobs/:name/restart", func(c *gin.Context) {
		name := c.Param("name")
		if !scheduler.Restart(name) {
			utils.RespondWithNotFound(c, "Unknown job: "+name)
			return
		}
		c.JSON(http.StatusOK, gin.H{"job": name, "restarted": true})
	})

	admin.POST("/jobs/:name/stop", func(c *gin.Context) {
		name := c.Param("name")
		if !scheduler.Stop(name) {
			utils.RespondWithNotFound(c, "Unknown or stopped job: "+name)
			return
		}
		c.JSON(http.StatusOK, gin.H{"job": name, "stopped": true})
	})

	admin.POST("/index/run", func(c *gin.Context) {
		report, err := indexer.IndexNow(c.Request.Context())
		if err != nil {
			if errors.Is(err, services.ErrIndexInProgress) {
				utils.RespondWithError(c, http.StatusConflict, "index_in_progress",
					"An index run is already in progress", nil)
				return
			}
			utils.RespondWithInternalError(c, "Index run failed", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	})

	admin.GET("/index/stats", func(c *gin.Context) {
		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		stats, err := indexer.Stats(ctx)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load indexing stats", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}
