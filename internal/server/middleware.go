package server

import (
	"github.com/gin-gonic/gin"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
)

// AuthRequired authenticates the session cookie, stamps the actor into
// the request context, and resolves the actor's access scope once for
// the whole request. Handlers downstream never re-derive visibility.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := actorctx.WithUserID(c.Request.Context(), sess.UserID)

		scope, err := s.accessSvc.Resolve(ctx, sess.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		ctx = accessdomain.WithScope(ctx, scope)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
