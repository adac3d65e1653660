package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.Tick(time.Millisecond)
	if cmd == nil {
		t.Error("Tick returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess},
		{"Error", cmds.NotifyError, NotificationError},
		{"Info", cmds.NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.fn("msg")
			msg := cmd()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
		})
	}
}

func TestCommands_NotificationDurations(t *testing.T) {
	cmds := NewCommands(nil)

	if msg := cmds.NotifyError("e")().(AddNotificationMsg); msg.Duration != LongNotificationDuration {
		t.Errorf("error duration = %v, want %v", msg.Duration, LongNotificationDuration)
	}
	if msg := cmds.NotifyInfo("i")().(AddNotificationMsg); msg.Duration != QuickNotificationDuration {
		t.Errorf("info duration = %v, want %v", msg.Duration, QuickNotificationDuration)
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.ClearNotification("id", time.Millisecond)
	if cmd == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestTickCmd(t *testing.T) {
	cmd := tickCmd(time.Millisecond)
	if cmd == nil {
		t.Fatal("tickCmd returned nil")
	}

	msg := cmd()
	tick, ok := msg.(TickMsg)
	if !ok {
		t.Fatalf("Expected TickMsg, got %T", msg)
	}
	if tick.Time.IsZero() {
		t.Error("TickMsg time should be set")
	}
}

func TestResetSessionCmd_NilSafeWrapper(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.ResetSession() == nil {
		t.Error("ResetSession returned nil command")
	}
}
