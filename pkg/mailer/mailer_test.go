package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/pkg/config"
)

func TestSendSkipsWithoutCredentials(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "smtp"}, nil)
	called := false
	sender.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	require.NoError(t, sender.Send(context.Background(), Message{To: "a@college.edu"}))
	assert.False(t, called)
}

func TestSendComposesMessage(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.college.edu", Port: 587, Username: "u", Password: "p", FromName: "Placement Cell", FromEmail: "cell@college.edu"}
	sender := NewSMTPSender(cfg, nil)

	var gotAddr string
	var gotBody []byte
	sender.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotBody = msg
		assert.Equal(t, "cell@college.edu", from)
		assert.Equal(t, []string{"s@college.edu"}, to)
		return nil
	}

	msg, err := OTPMessage("s@college.edu", "123456", 10*time.Minute)
	require.NoError(t, err)
	require.NoError(t, sender.Send(context.Background(), msg))
	assert.Equal(t, "smtp.college.edu:587", gotAddr)
	assert.Contains(t, string(gotBody), "123456")
	assert.Contains(t, string(gotBody), "10 minutes")
	assert.Contains(t, string(gotBody), "From: Placement Cell <cell@college.edu>")
}

func TestSendWrapsRelayError(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Username: "u", Password: "p"}, nil)
	sender.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	err := sender.Send(context.Background(), Message{To: "x@college.edu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
}
