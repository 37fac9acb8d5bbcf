package testutil

import (
	"context"
	"regexp"
	"sync"
)

// SentMail is one message captured by RecordingMailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// RecordingMailer keeps every message in memory. Set Err to make Send fail.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Last returns the most recent message, or false if nothing was sent.
func (m *RecordingMailer) Last() (SentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return SentMail{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

var codePattern = regexp.MustCompile(`confirmation code: ([A-Za-z0-9]+)`)

// LastCode extracts the confirmation code from the most recent message.
func (m *RecordingMailer) LastCode() string {
	mail, ok := m.Last()
	if !ok {
		return ""
	}
	match := codePattern.FindStringSubmatch(mail.Body)
	if match == nil {
		return ""
	}
	return match[1]
}
