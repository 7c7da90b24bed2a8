package auth

import (
	"github.com/nkosi-ncube/CareIQ/internal/model"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

// Guards run before any external call. Their failures are final.

func RequireSession(s *model.Session) error {
	if s == nil {
		return apperrors.Unauthorized("sign in required")
	}
	return nil
}

func RequireRole(s *model.Session, role model.Role) error {
	if err := RequireSession(s); err != nil {
		return err
	}
	if s.Role != role {
		return apperrors.Unauthorized("this action requires role " + string(role))
	}
	return nil
}

// RequireParty allows either the bound patient or the bound professional.
func RequireParty(s *model.Session, c *model.Consultation) error {
	if err := RequireSession(s); err != nil {
		return err
	}
	if !c.Involves(s.ID) {
		return apperrors.Unauthorized("not a party to this consultation")
	}
	return nil
}

// RequireProfessional allows only the bound professional.
func RequireProfessional(s *model.Session, c *model.Consultation) error {
	if err := RequireRole(s, model.RoleProfessional); err != nil {
		return err
	}
	if c.ProfessionalID != s.ID {
		return apperrors.Unauthorized("only the assigned professional may do this")
	}
	return nil
}
