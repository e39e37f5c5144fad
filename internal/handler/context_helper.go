package handler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/middleware"
	"github.com/academix/gradebook-api/internal/models"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
)

type studentAccessReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func isAdmin(claims *models.JWTClaims) bool {
	return claims != nil && (claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin)
}

// authorizeStudentAccess lets staff through and restricts STUDENT
// callers to their own records.
func authorizeStudentAccess(c *gin.Context, students studentAccessReader, studentID string) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent {
		return nil
	}

	student, err := students.FindByID(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.UserID == nil || *student.UserID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "students may only access their own records")
	}
	return nil
}
