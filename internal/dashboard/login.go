package dashboard

import (
	"context"

	"fixxyadmin/internal/errors"
	"fixxyadmin/internal/logging"
)

// Login screen messages
const (
	LoginSuccessNotice   = "Login successful"
	WrongCredentials     = "Wrong Credentials"
	DefaultLoginError    = "An error occurred"
	MissingFieldsMessage = "Username and password are required"
)

// LoginForm is the submitted login form. Only presence is checked.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// LoginResult is the outcome of a login submit.
//
// On failure ErrorText is rendered under the form and Notice is shown as an
// error toast; the two differ only for transport and shape failures.
type LoginResult struct {
	Success   bool
	ErrorText string
	Notice    string
}

// Login submits the credentials. There is no retry and no attempt counting.
func (s *Service) Login(ctx context.Context, form LoginForm) LoginResult {
	if err := s.validate.Struct(form); err != nil {
		return LoginResult{ErrorText: MissingFieldsMessage, Notice: MissingFieldsMessage}
	}

	err := s.api.Login(ctx, form.Username, form.Password)
	if err == nil {
		s.logger.Info(ctx, "admin logged in", logging.Fields{"username": form.Username})
		return LoginResult{Success: true, Notice: LoginSuccessNotice}
	}

	if rejected, ok := errors.AsRejected(err); ok {
		text := rejected.Message
		if text == "" {
			text = DefaultLoginError
		}
		s.logger.Info(ctx, "login rejected", logging.Fields{"username": form.Username, "status": rejected.StatusCode})
		return LoginResult{ErrorText: text, Notice: text}
	}

	s.logger.Error(ctx, "login request failed", err, logging.Fields{"username": form.Username})
	if errors.IsShape(err) {
		return LoginResult{ErrorText: DefaultLoginError, Notice: WrongCredentials}
	}
	return LoginResult{ErrorText: err.Error(), Notice: WrongCredentials}
}
