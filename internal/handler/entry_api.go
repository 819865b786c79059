package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/service"
)

// GetIndex lists every entry's id and change token, so clients can diff
// their local copy against the server.
func (a *API) GetIndex(c *gin.Context) {
	digests, err := a.entries.Index()
	if err != nil {
		a.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, digests)
}

// CreateEntry inserts a new entry from the submitted payload and returns the
// allocated id.
func (a *API) CreateEntry(c *gin.Context) {
	payload, err := a.bindPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	id, err := a.entries.Create(payload)
	if err != nil {
		a.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": id})
}

// UpdateEntry applies the submitted payload to an existing entry, creating a
// placeholder row first when the id is unknown.
func (a *API) UpdateEntry(c *gin.Context) {
	payload, err := a.bindPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := a.entries.Update(payload); err != nil {
		if errors.Is(err, service.ErrMissingEntryID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// RotateEntries runs one rotation pass.
func (a *API) RotateEntries(c *gin.Context) {
	if err := a.rotation.Rotate(); err != nil {
		a.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}

// bindPayload accepts either the legacy form field carrying a JSON document
// or a plain JSON request body.
func (a *API) bindPayload(c *gin.Context) (service.EntryPayload, error) {
	var payload service.EntryPayload
	if raw := c.PostForm("payload"); raw != "" {
		err := json.Unmarshal([]byte(raw), &payload)
		return payload, err
	}
	err := c.ShouldBindJSON(&payload)
	return payload, err
}
