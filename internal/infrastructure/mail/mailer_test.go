package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stockmaster-api/pkg/config"
)

type fakeSender struct {
	msgs []*gomail.Message
	err  error
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	s.msgs = append(s.msgs, m...)
	return s.err
}

func TestSMTPMailer_EnviaOTP(t *testing.T) {
	s := &fakeSender{}
	m := &SMTPMailer{dialer: s, from: "no-reply@stockmaster.local"}

	require.NoError(t, m.SendOTP(context.Background(), "ana@example.com", "123456"))
	require.Len(t, s.msgs, 1)
	assert.Equal(t, []string{"ana@example.com"}, s.msgs[0].GetHeader("To"))

	var buf bytes.Buffer
	_, err := s.msgs[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")
}

func TestSMTPMailer_ErrorDeEnvio(t *testing.T) {
	m := &SMTPMailer{dialer: &fakeSender{err: errors.New("conexión rechazada")}}
	err := m.SendOTP(context.Background(), "ana@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestNew_SinHostUsaLog(t *testing.T) {
	_, ok := New(config.SMTPConfig{}, nil).(*LogMailer)
	assert.True(t, ok)
	_, ok = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil).(*SMTPMailer)
	assert.True(t, ok)
}
