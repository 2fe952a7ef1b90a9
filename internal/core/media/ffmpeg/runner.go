package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"
)

// runner abstracts where ffmpeg/ffprobe actually execute: the system
// binaries when installed, or the embedded WASM build otherwise.
type runner interface {
	ffmpeg(ctx context.Context, args []string) error
	ffprobe(ctx context.Context, args []string) ([]byte, error)
}

// execRunner shells out to installed binaries.
type execRunner struct {
	ffmpegBin  string
	ffprobeBin string
}

func (r *execRunner) ffmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w\n%s", err, tail(out))
	}
	return nil
}

func (r *execRunner) ffprobe(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.ffprobeBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe: %w\n%s", err, tail(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// wasmRunner runs the embedded ffmpeg build under wazero. Slower than native
// but removes the external dependency entirely.
type wasmRunner struct{}

func (r *wasmRunner) ffmpeg(ctx context.Context, args []string) error {
	wargs := wasm.Args{
		Stdout: io.Discard,
		Stderr: io.Discard,
		Args:   args,
		Config: mountConfig(args),
	}
	rc, err := ffmpreg.Ffmpeg(ctx, wargs)
	if err != nil {
		return fmt.Errorf("embedded ffmpeg: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("embedded ffmpeg exited with code %d", rc)
	}
	return nil
}

func (r *wasmRunner) ffprobe(ctx context.Context, args []string) ([]byte, error) {
	var stdout bytes.Buffer
	wargs := wasm.Args{
		Stdout: &stdout,
		Stderr: io.Discard,
		Args:   args,
		Config: mountConfig(args),
	}
	rc, err := ffmpreg.Ffprobe(ctx, wargs)
	if err != nil {
		return nil, fmt.Errorf("embedded ffprobe: %w", err)
	}
	if rc != 0 {
		return nil, fmt.Errorf("embedded ffprobe exited with code %d", rc)
	}
	return stdout.Bytes(), nil
}

// mountConfig exposes the directories of any path-looking argument to the
// WASM guest, which has no ambient filesystem access.
func mountConfig(args []string) func(wazero.ModuleConfig) wazero.ModuleConfig {
	dirs := map[string]bool{}
	for _, a := range args {
		if filepath.IsAbs(a) {
			dirs[filepath.Dir(a)] = true
		}
	}
	return func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
		fsCfg := wazero.NewFSConfig()
		for dir := range dirs {
			fsCfg = fsCfg.WithDirMount(dir, dir)
		}
		return cfg.WithFSConfig(fsCfg)
	}
}

// tail bounds diagnostic output kept in error messages.
func tail(b []byte) []byte {
	const max = 2048
	if len(b) <= max {
		return bytes.TrimSpace(b)
	}
	return bytes.TrimSpace(b[len(b)-max:])
}
