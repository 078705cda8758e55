package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	saved := Mode()
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		SetLogMode(saved)
	})
	return &buf
}

func TestModeFiltering(t *testing.T) {
	buf := captureLog(t)
	SetLogMode(WarningMode)

	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warningf("warning %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warning were logged:\n%s", out)
	}
	if !strings.Contains(out, " WARNING warning 3") {
		t.Errorf("missing warning:\n%s", out)
	}
	if !strings.Contains(out, "   ERROR error 4") {
		t.Errorf("missing error:\n%s", out)
	}
}

func TestSilentMode(t *testing.T) {
	buf := captureLog(t)
	SetLogMode(SilentMode)
	Criticalf("nothing to see")
	if buf.Len() != 0 {
		t.Errorf("silent mode logged %q", buf.String())
	}
}

func TestTimeLogAppendsElapsed(t *testing.T) {
	buf := captureLog(t)
	SetLogMode(InfoMode)
	tlog := NewTimeLog()
	tlog.Infof("filtered %d blocks", 8)
	out := buf.String()
	if !strings.Contains(out, "filtered 8 blocks: ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSetLoggerWritesFile(t *testing.T) {
	saved := Mode()
	defer SetLogMode(saved)
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "blocks.log")
	c := &LogConfig{Logfile: path, MaxSize: 1, Verbose: true}
	c.SetLogger()
	if Mode() != DebugMode {
		t.Errorf("verbose config left mode at %d", Mode())
	}
	Debugf("into the file")
	Shutdown()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "into the file") {
		t.Errorf("log file contents %q", data)
	}
}
