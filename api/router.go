package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/mqy/minichat/auth"
	"github.com/mqy/minichat/room"
)

// handlers maps room operations onto HTTP.
type handlers struct {
	svc        *room.Service
	authClient auth.Client
}

// requester returns the claimed participant name, empty when the request has none.
func (h *handlers) requester(c *gin.Context) string {
	name, err := h.authClient.Identify(c.Request)
	if err != nil {
		glog.V(5).Infof("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
		return ""
	}
	return name
}

// abort writes err with the status chosen by statusOf.
func abort(c *gin.Context, err error, statusOf func(room.Code) int) {
	e, ok := err.(*room.Error)
	if !ok {
		e = &room.Error{Code: room.ErrorCodeInternal, Params: []string{err.Error()}}
	}
	status := statusOf(e.Code)
	if e.Code == room.ErrorCodeInternal {
		glog.Errorf("api: %s %s: %v", c.Request.Method, c.FullPath(), e)
		room.InterceptError(e)
	}
	c.AbortWithStatusJSON(status, e)
}

func defaultStatus(code room.Code) int {
	switch code {
	case room.ErrorCodeInvalidArguments:
		return http.StatusUnprocessableEntity
	case room.ErrorCodeAlreadyExists, room.ErrorCodeUnauthenticated:
		return http.StatusConflict
	case room.ErrorCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// heartbeatStatus reports every failure of the heartbeat refresh as not found.
func heartbeatStatus(room.Code) int {
	return http.StatusNotFound
}

func (h *handlers) register(c *gin.Context) {
	var req room.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, &room.Error{Code: room.ErrorCodeInvalidArguments, Params: []string{err.Error()}}, defaultStatus)
		return
	}
	p, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		abort(c, err, defaultStatus)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) participants(c *gin.Context) {
	out, err := h.svc.Participants(c.Request.Context())
	if err != nil {
		abort(c, err, defaultStatus)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) send(c *gin.Context) {
	from := h.requester(c)

	var req room.SendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// The sender is checked first, an unknown sender wins over a bad body.
		req = room.SendReq{}
	}
	m, err := h.svc.Send(c.Request.Context(), from, &req)
	if err != nil {
		abort(c, err, defaultStatus)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handlers) messages(c *gin.Context) {
	out, err := h.svc.Messages(c.Request.Context(), h.requester(c), c.Query("limit"))
	if err != nil {
		abort(c, err, defaultStatus)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) heartbeat(c *gin.Context) {
	if err := h.svc.Heartbeat(c.Request.Context(), h.requester(c)); err != nil {
		abort(c, err, heartbeatStatus)
		return
	}
	c.Status(http.StatusOK)
}

func (h *handlers) deleteMessage(c *gin.Context) {
	if err := h.svc.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		glog.Errorf("api: delete message %s: %v", c.Param("id"), err)
		c.String(http.StatusInternalServerError, "error deleting message")
		return
	}
	c.String(http.StatusOK, "message deleted")
}

func (h *handlers) deleteParticipant(c *gin.Context) {
	if err := h.svc.DeleteParticipant(c.Request.Context(), c.Param("id")); err != nil {
		glog.Errorf("api: delete participant %s: %v", c.Param("id"), err)
		c.String(http.StatusInternalServerError, "error deleting participant")
		return
	}
	c.String(http.StatusOK, "participant deleted")
}

// setupRoutes registers the room routes on router.
func setupRoutes(router *gin.Engine, h *handlers) {
	router.POST("/participants", h.register)
	router.GET("/participants", h.participants)
	router.POST("/messages", h.send)
	router.GET("/messages", h.messages)
	router.POST("/status", h.heartbeat)
	router.DELETE("/mensagens/:id", h.deleteMessage)
	router.DELETE("/participantes/:id", h.deleteParticipant)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}
