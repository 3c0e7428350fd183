package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"

	"github.com/GreyHak/satisfactory-save-monitor/internal/config"
	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
	"github.com/GreyHak/satisfactory-save-monitor/internal/metrics"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

const (
	testLogPath      = "/srv/FactoryGame/Saved/Logs/FactoryGame.log"
	testSettingsPath = "/srv/FactoryGame/Saved/Config/LinuxServer/GameUserSettings.ini"
)

func quietLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func testServeOptions() config.ServeOptions {
	return config.ServeOptions{
		LogFile:         testLogPath,
		SettingsFile:    testSettingsPath,
		PollInterval:    20 * time.Millisecond,
		ProbeTimeout:    50 * time.Millisecond,
		WriteTimeout:    time.Second,
		DefaultInterval: config.DefaultIntervalSeconds,
	}
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func TestNewServerSeedsInterval(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		want     float64
	}{
		{name: "configured", settings: "mFloatValues=((\"FG.AutosaveInterval\", 600.000000))\n", want: 600},
		{name: "absent key", settings: "mIntValues=((\"FG.NetworkQuality\", 3))\n", want: config.DefaultIntervalSeconds},
		{name: "invalid value", settings: "mFloatValues=((\"FG.AutosaveInterval\", -1.0))\n", want: config.DefaultIntervalSeconds},
		{name: "missing file", want: config.DefaultIntervalSeconds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			if tc.settings != "" {
				writeFile(t, fsys, testSettingsPath, tc.settings)
			}
			a := NewServer(testServeOptions(), quietLogger(), ServerDeps{Fs: fsys})
			if got := a.Store().Snapshot().AutosaveIntervalSeconds; got != tc.want {
				t.Fatalf("AutosaveIntervalSeconds = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestServerAppPublishesPredictionFromLog(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testSettingsPath, "mFloatValues=((\"FG.AutosaveInterval\", 600.000000))\n")
	writeFile(t, fsys, testLogPath, ""+
		"[2024.03.01-12.00.00:000][  1]LogInit: Build: ++FactoryGame+rel-main\n"+
		"[2024.03.01-12.00.05:000][ 12]LogGame: World Serialization (save): 2.000 seconds\n"+
		"[2024.03.01-12.00.06:000][ 13]LogGame: World Serialization (save): soon seconds\n"+
		"[2024.03.01-12.00.14:000][ 14]LogGame: Total Save Time took 9.000 seconds\n")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	m := metrics.New()
	a := NewServer(testServeOptions(), quietLogger(), ServerDeps{Fs: fsys, Metrics: m, Listener: ln})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunContext(ctx) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		cancel()
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	completedAt := time.Date(2024, 3, 1, 12, 0, 14, 0, time.UTC)
	wantNext := completedAt.Add(600 * time.Second)
	deadline := time.Now().Add(5 * time.Second)
	var got wire.Status
	for {
		_ = conn.SetReadDeadline(deadline)
		got, err = wire.ReadStatus(conn)
		if err != nil {
			cancel()
			t.Fatalf("ReadStatus() error = %v", err)
		}
		if !got.IsSaving && got.LastSaveDurationSeconds == 9 {
			break
		}
	}
	if !got.PredictedNextSaveStart.Equal(wantNext) {
		t.Fatalf("PredictedNextSaveStart = %v, want %v", got.PredictedNextSaveStart, wantNext)
	}
	if !got.PredictedSaveEnd.Equal(wantNext.Add(9 * time.Second)) {
		t.Fatalf("PredictedSaveEnd = %v, want %v", got.PredictedSaveEnd, wantNext.Add(9*time.Second))
	}
	if got.AutosaveIntervalSeconds != 600 {
		t.Fatalf("AutosaveIntervalSeconds = %v, want 600", got.AutosaveIntervalSeconds)
	}

	if v := testutil.ToFloat64(m.LogMalformed); v != 1 {
		t.Fatalf("malformed lines = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.LogEvents.WithLabelValues("save_completed")); v != 1 {
		t.Fatalf("save_completed events = %v, want 1", v)
	}
	waitFor(t, "next save gauge", func() bool {
		return testutil.ToFloat64(m.NextSave) == float64(wantNext.Unix())
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunContext() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunContext() did not return after cancel")
	}
}
