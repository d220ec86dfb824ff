package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg"
	"Task_Mania/internal/repository/redis"
)

var emailSubjects = map[string]string{
	redis.ScopeRegister: "Task Mania registration code",
	redis.ScopeReset:    "Task Mania password reset code",
}

type EmailService struct {
	store  CodeStore
	mailer pkg.Mailer
	ttl    time.Duration
}

func NewEmailService(store CodeStore, mailer pkg.Mailer) *EmailService {
	return &EmailService{store: store, mailer: mailer, ttl: redis.DefaultEmailCodeTTL}
}

// SendCode mails a fresh 6-digit code. The code only becomes usable after
// the mail has been handed to the SMTP server.
func (s *EmailService) SendCode(ctx context.Context, scope, email string) error {
	subject, ok := emailSubjects[scope]
	if !ok {
		return fmt.Errorf("unknown scope %q: %w", scope, model.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email: %w", model.ErrInvalidInput)
	}
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.store.SavePending(ctx, scope, email, code); err != nil {
		return model.NewStoreError("save email code", err)
	}
	html := pkg.EmailCodeHTML(scope, code, s.ttl)
	if err = s.mailer.Send(email, subject, html); err != nil {
		_ = s.store.DeletePending(ctx, scope, email)
		return fmt.Errorf("send mail: %w", err)
	}
	if err = s.store.Confirm(ctx, scope, email); err != nil {
		_ = s.store.DeletePending(ctx, scope, email)
		return model.NewStoreError("confirm email code", err)
	}
	return nil
}

// VerifyCode consumes the code; a second call with the same code fails.
func (s *EmailService) VerifyCode(ctx context.Context, scope, email, code string) error {
	err := s.store.Consume(ctx, scope, email, code)
	if errors.Is(err, redis.ErrCodeNotFound) {
		return fmt.Errorf("verification failed: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return model.NewStoreError("verify email code", err)
	}
	return nil
}
