package handler

import (
	"strings"

	"github.com/signon/signon-go/internal/model"
)

// validationErrors maps field names to messages for 400 responses.
type validationErrors map[string]string

func validEmailShape(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func validateRegister(req model.RegisterRequest) validationErrors {
	errs := validationErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = "email is required"
	} else if !validEmailShape(strings.TrimSpace(req.Email)) {
		errs["email"] = "email is not valid"
	}
	if req.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateLogin(req model.LoginRequest) validationErrors {
	errs := validationErrors{}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = "email is required"
	}
	if req.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
