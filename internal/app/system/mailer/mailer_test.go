package mailer

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_DisabledWithoutHost(t *testing.T) {
	m := New(Config{From: "noreply@example.org"}, zap.NewNop())
	if m.Enabled() {
		t.Fatal("expected mailer to be disabled without a host")
	}
	if err := m.Send(context.Background(), Email{To: "a@example.org", Subject: "hi"}); err != nil {
		t.Fatalf("disabled Send should not error: %v", err)
	}
}

func TestNew_DefaultPort(t *testing.T) {
	m := New(Config{Host: "smtp.example.org"}, zap.NewNop())
	if !m.Enabled() {
		t.Fatal("expected mailer to be enabled")
	}
	if m.dialer.Port != 587 {
		t.Errorf("port = %d, want 587", m.dialer.Port)
	}
}

func TestSend_CanceledContext(t *testing.T) {
	m := New(Config{Host: "smtp.invalid"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, Email{To: "a@example.org"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestMessage_Headers(t *testing.T) {
	m := New(Config{Host: "smtp.example.org", From: "noreply@example.org", FromName: "GeoGroups"}, zap.NewNop())
	msg := m.message(Email{To: "bob@example.org", Subject: "Invite", TextBody: "t", HTMLBody: "<p>h</p>"})

	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "bob@example.org" {
		t.Errorf("To = %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Invite" {
		t.Errorf("Subject = %v", got)
	}
	if got := msg.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "noreply@example.org") {
		t.Errorf("From = %v", got)
	}
}

func TestBuildInvitationEmail(t *testing.T) {
	e := BuildInvitationEmail("bob@example.org", InvitationEmailData{
		SiteName:    "GeoGroups",
		GroupTitle:  "Rivers <&> Lakes",
		InviterName: "Alice",
		Role:        "member",
		RespondURL:  "https://geo.example.org/groups/invitations/tok",
	})

	if e.To != "bob@example.org" {
		t.Errorf("To = %q", e.To)
	}
	if !strings.Contains(e.Subject, "Rivers <&> Lakes") {
		t.Errorf("Subject = %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "https://geo.example.org/groups/invitations/tok") {
		t.Error("text body missing respond URL")
	}
	if strings.Contains(e.HTMLBody, "<&>") {
		t.Error("HTML body should escape the group title")
	}
	if !strings.Contains(e.HTMLBody, "Alice") {
		t.Error("HTML body missing inviter")
	}
}
