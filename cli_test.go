package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShadesCommand(t *testing.T) {
	out, err := runCmd(t, "shades", "rgb(100, 128, 250)")
	if err != nil {
		t.Fatalf("shades: %v", err)
	}
	for _, want := range []string{"#789aff", "#6480fa", "#5066c8"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestShadesCommandInvalidColor(t *testing.T) {
	if _, err := runCmd(t, "shades", "chartreuse"); err == nil {
		t.Fatal("expected error for unparseable color")
	}
}

func TestSampleRequiresCoordinates(t *testing.T) {
	if _, err := runCmd(t, "sample", "--x", "3"); err == nil {
		t.Fatal("expected error without --y")
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	useConfigDir(t)
	t.Setenv("PIXELPICK_CAPTURE", "ffmpeg")
	t.Setenv("PIXELPICK_DISPLAY", "1")

	f := &rootFlags{}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&f.capture, "capture", CaptureAuto, "")
	cmd.Flags().IntVar(&f.display, "display", 0, "")
	cmd.Flags().BoolVar(&f.noPreview, "no-preview", false, "")
	if err := cmd.ParseFlags([]string{"--capture", "x11", "--no-preview"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := f.loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Capture != CaptureX11 {
		t.Errorf("expected flag to beat environment, got %s", cfg.Capture)
	}
	if cfg.Display != 1 {
		t.Errorf("expected unset flag to keep environment value, got %d", cfg.Display)
	}
	if cfg.Preview {
		t.Error("expected --no-preview to disable preview")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	useConfigDir(t)
	t.Setenv("PIXELPICK_CAPTURE", "vnc")

	f := &rootFlags{}
	if _, err := f.loadConfig(NewRootCmd()); err == nil {
		t.Fatal("expected validation error")
	}
}
