package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/common"
	"github.com/amiral-e/esp-back-sub001/internal/docsvc"
)

func (h *Handler) failDocs(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, docsvc.ErrNotFound) {
		common.Fail(c, http.StatusNotFound, notFoundMsg)
		return
	}
	h.Log.Error().Err(err).Msg("docs service call failed")
	common.Fail(c, http.StatusInternalServerError, "docs service unavailable")
}

// ListCollections returns what the docs backend actually reports for the
// caller, not a canned list.
func (h *Handler) ListCollections(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	cols, err := h.Docs.ListCollections(c.Request.Context(), identity.UserID)
	if err != nil {
		h.failDocs(c, err, "No collections found")
		return
	}
	common.OK(c, gin.H{"collections": cols})
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	name := c.Param("collection_name")
	if err := h.Docs.DeleteCollection(c.Request.Context(), identity.UserID, name); err != nil {
		h.failDocs(c, err, "No collection found")
		return
	}
	common.OK(c, gin.H{"message": "Collection deleted"})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	docs, err := h.Docs.ListDocuments(c.Request.Context(), identity.UserID, c.Param("collection_name"))
	if err != nil {
		h.failDocs(c, err, "No collection found")
		return
	}
	common.OK(c, gin.H{"documents": docs})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	err := h.Docs.DeleteDocument(c.Request.Context(), identity.UserID,
		c.Param("collection_name"), c.Param("document_id"))
	if err != nil {
		h.failDocs(c, err, "No document found")
		return
	}
	common.OK(c, gin.H{"message": "Document deleted"})
}
