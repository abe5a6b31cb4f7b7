package realtime

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

// streamablePaths maps each streamable collection to the API path whose
// access rule also governs its change stream.
var streamablePaths = map[string]string{
	CollectionProjects:       "/projects",
	CollectionSubcontractors: "/subcontractors",
	CollectionTimeLogs:       "/timelogs",
	CollectionInvoices:       "/invoices",
}

type RealtimeController struct {
	hub *Hub
}

// RegisterRoutes mounts one stream per collection, each behind the
// middleware guard returns for that collection's API path.
func (c *RealtimeController) RegisterRoutes(router *gin.RouterGroup, guard func(path string) gin.HandlerFunc) {
	for collection, path := range streamablePaths {
		router.GET("/realtime/"+collection, guard(path), c.StreamChanges(collection))
	}
}

// StreamChanges
// @Summary Stream collection changes
// @Description Server-sent events with one event per change of the collection. The subscription ends with the request.
// @Tags realtime
// @Produce text/event-stream
// @Security BearerAuth
// @Param collection path string true "projects, subcontractors, timeLogs or invoices"
// @Success 200 {object} Change
// @Failure 403 {object} map[string]string
// @Router /realtime/{collection} [get]
func (c *RealtimeController) StreamChanges(collection string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.stream(ctx, collection)
	}
}

func (c *RealtimeController) stream(ctx *gin.Context, collection string) {
	changes := make(chan Change, 32)
	unsubscribe := c.hub.Subscribe(collection, func(change Change) {
		select {
		case changes <- change:
		default:
			// slow client, drop rather than block the publisher
		}
	})
	defer unsubscribe()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Request.Context().Done():
			return false
		case change := <-changes:
			ctx.SSEvent("change", change)
			return true
		case <-keepAlive.C:
			ctx.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			return true
		}
	})
}
