package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/auth"
	"github.com/amiral-e/esp-back-sub001/internal/common"
)

const IdentityKey = "identity"

// Authenticate is the authorization gate: it runs the verifier before any
// handler body. All four verification failure kinds map to 401; only a
// transport or store fault becomes a 500. The unknown-user check happens
// inside the verifier, so a non-existent user can never reach a role check.
func Authenticate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := auth.FromHeader(c.Request.Header)
		if err != nil {
			failAuth(c, err)
			return
		}

		identity, err := v.Verify(c.Request.Context(), cred)
		if err != nil {
			failAuth(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// AdminRequired runs after Authenticate. A resolved identity without the
// admin role is forbidden, never unauthorized.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, auth.ErrMissing.Message)
			return
		}
		if !identity.Admin {
			common.Fail(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}

func failAuth(c *gin.Context, err error) {
	var aerr *auth.Error
	if errors.As(err, &aerr) {
		common.Fail(c, http.StatusUnauthorized, aerr.Message)
		return
	}
	common.Fail(c, http.StatusInternalServerError, "authentication failed")
}
