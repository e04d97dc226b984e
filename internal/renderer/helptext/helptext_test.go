package helptext

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestShowLogsEveryLine(t *testing.T) {
	logger, hook := test.NewNullLogger()
	Show(Missing404Text, logger)
	if len(hook.Entries) != len(Missing404Text) {
		t.Fatalf("期望 %d 行日志，实际 %d", len(Missing404Text), len(hook.Entries))
	}
	if hook.LastEntry().Data["action"] != "help" {
		t.Fatalf("日志缺少 action 字段: %v", hook.LastEntry().Data)
	}
	Show(Missing404Text, nil)
}
