// Command streamdump records drawstream frames from a YAML script and
// replays them into a backend.
//
//	streamdump -script testdata/sprites.yaml -backend gpustate
//	streamdump -script scene.yaml -backend capture -o scene.dscf
//	streamdump -replay scene.dscf -backend trace
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gogpu/drawstream"
	"github.com/gogpu/drawstream/backend/gpustate"
	"github.com/gogpu/drawstream/backend/trace"
	"github.com/gogpu/drawstream/capture"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		scriptPath = flag.String("script", "", "YAML frame script")
		replayPath = flag.String("replay", "", "capture file to replay instead of a script")
		backend    = flag.String("backend", "", "backend name (default from config)")
		output     = flag.String("o", "", "output file (default stdout)")
		baseline   = flag.Bool("baseline", false, "include baseline records in trace output")
		list       = flag.Bool("list", false, "list registered backends and exit")
	)
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(drawstream.Backends(), "\n"))
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *baseline {
		cfg.Trace.Baseline = true
	}

	logger, err := cfg.logger()
	if err != nil {
		log.Fatal(err)
	}
	drawstream.SetLogger(logger)

	frames, err := loadFrames(cfg, *scriptPath, *replayPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, frames, *output); err != nil {
		log.Fatal(err)
	}
}

// namedFrame is a finished frame and the script name it came from.
type namedFrame struct {
	name  string
	frame *drawstream.Frame
}

func loadFrames(cfg *Config, scriptPath, replayPath string) ([]namedFrame, error) {
	switch {
	case replayPath != "" && scriptPath != "":
		return nil, errors.New("-script and -replay are mutually exclusive")
	case replayPath != "":
		f, err := os.Open(replayPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		frame, err := capture.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", replayPath, err)
		}
		return []namedFrame{{name: replayPath, frame: frame}}, nil
	case scriptPath != "":
		script, err := loadScript(scriptPath)
		if err != nil {
			return nil, err
		}
		return recordScript(cfg, script)
	}
	return nil, errors.New("one of -script or -replay is required")
}

// recordScript records every frame of script. Each frame gets its own
// Manager because a Frame is only valid until its Manager is reset.
func recordScript(cfg *Config, script *Script) ([]namedFrame, error) {
	opts, err := cfg.managerOptions()
	if err != nil {
		return nil, err
	}
	frames := make([]namedFrame, 0, len(script.Frames))
	for _, fs := range script.Frames {
		m := drawstream.NewManager(opts...)
		f, err := record(m, fs)
		if err != nil {
			return nil, err
		}
		frames = append(frames, namedFrame{name: fs.Name, frame: f})
	}
	return frames, nil
}

func run(cfg *Config, frames []namedFrame, output string) error {
	if cfg.Backend == "capture" {
		return runCapture(frames, output)
	}

	w, closeOut, err := create(output)
	if err != nil {
		return err
	}
	for _, nf := range frames {
		b, err := newBackend(cfg)
		if err != nil {
			closeOut()
			return err
		}
		if err := nf.frame.Playback(b); err != nil {
			closeOut()
			return fmt.Errorf("frame %q: %w", nf.name, err)
		}
		if err := writeResult(w, b, nf.name); err != nil {
			closeOut()
			return err
		}
	}
	return closeOut()
}

// runCapture writes one capture file per frame. Several frames get
// numbered files.
func runCapture(frames []namedFrame, output string) error {
	if len(frames) > 1 && output == "" {
		return errors.New("capture of several frames needs -o")
	}
	for i, nf := range frames {
		b := capture.NewBackend()
		if err := nf.frame.Playback(b); err != nil {
			return fmt.Errorf("frame %q: %w", nf.name, err)
		}
		path := output
		if len(frames) > 1 {
			path = fmt.Sprintf("%s.%d", output, i)
		}
		w, closeOut, err := create(path)
		if err != nil {
			return err
		}
		if _, err := b.WriteTo(w); err != nil {
			closeOut()
			return err
		}
		if err := closeOut(); err != nil {
			return err
		}
	}
	return nil
}

// create opens path for writing. An empty path writes to stdout.
func create(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newBackend(cfg *Config) (drawstream.Backend, error) {
	b, err := drawstream.NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if t, ok := b.(*trace.Backend); ok {
		t.Baseline = cfg.Trace.Baseline
	}
	return b, nil
}

func writeResult(w io.Writer, b drawstream.Backend, name string) error {
	switch b := b.(type) {
	case *gpustate.Backend:
		st := b.Stats()
		if _, err := fmt.Fprintf(w, "# %s: %d calls, %d draws, %d pipeline switches (%d elided)\n",
			name, st.Calls, st.Draws, st.PipelineSwitches, st.ElidedSwitches); err != nil {
			return err
		}
		_, err := b.WriteTo(w)
		return err
	case drawstream.WriterBackend:
		if _, err := fmt.Fprintf(w, "# %s\n", name); err != nil {
			return err
		}
		_, err := b.WriteTo(w)
		return err
	}
	_, err := fmt.Fprintf(w, "# %s: replayed\n", name)
	return err
}
