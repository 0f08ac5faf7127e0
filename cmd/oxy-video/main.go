// Command oxy-video plays an IVF (VP8) file in a window, streaming decoded frames into a GPU texture.
// With -mode sphere the frame is treated as equirectangular and wrapped around the viewer; drag with
// the left mouse button or use the arrow keys to look around and scroll to zoom.
//
// Keys: Q or Escape quits, P toggles the profiler, V toggles vsync.
package main

import (
	"flag"
	"fmt"
	"os"
	"math"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine"
	"github.com/Carmen-Shannon/oxy-video/engine/camera"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/Carmen-Shannon/oxy-video/engine/media/gpu"
	"github.com/Carmen-Shannon/oxy-video/engine/media/ivf"
	"github.com/Carmen-Shannon/oxy-video/engine/renderer"
	"github.com/Carmen-Shannon/oxy-video/engine/window"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

type options struct {
	asset     string
	width     int
	height    int
	loop      bool
	vsync     bool
	profile   bool
	software  bool
	frameRate float64
	logLevel  string
	mode      string
	fov       float64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.asset, "asset", "", "path to an IVF file with a VP8 stream")
	flag.IntVar(&o.width, "width", 1280, "initial window width")
	flag.IntVar(&o.height, "height", 720, "initial window height")
	flag.BoolVar(&o.loop, "loop", true, "restart playback at the end of the stream")
	flag.BoolVar(&o.vsync, "vsync", true, "wait for vertical blank when presenting")
	flag.BoolVar(&o.profile, "profile", false, "log frame and playback statistics every second")
	flag.BoolVar(&o.software, "software", false, "force the software fallback adapter")
	flag.Float64Var(&o.frameRate, "fps", 0, "override the playback frame rate from the IVF header")
	flag.StringVar(&o.logLevel, "log-level", "info", "logrus level (debug, info, warn, error)")
	flag.StringVar(&o.mode, "mode", "quad", "projection: quad (letterboxed) or sphere (equirectangular 360)")
	flag.Float64Var(&o.fov, "fov", 75, "sphere mode vertical field of view in degrees")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		log.WithError(err).Fatal("Invalid log level")
	}
	log.SetLevel(level)

	if opts.asset == "" {
		fmt.Fprintln(os.Stderr, "usage: oxy-video -asset <file.ivf> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	projection, err := renderer.ParseProjection(opts.mode)
	if err != nil {
		log.WithError(err).Fatal("Invalid mode")
	}

	if err := run(opts, projection); err != nil {
		log.WithError(err).Fatal("Playback failed")
	}
}

func run(opts options, projection renderer.Projection) error {
	component := func(name string) *logrus.Entry {
		return log.WithField("component", name)
	}

	w, err := window.NewWindow(
		window.WithTitle("oxy-video: "+filepath.Base(opts.asset)),
		window.WithWidth(opts.width),
		window.WithHeight(opts.height),
		window.WithLogger(component("window")),
	)
	if err != nil {
		return err
	}

	presentMode := renderer.PresentModeVSync
	if !opts.vsync {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, w,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(opts.software),
		renderer.WithProjection(projection),
		renderer.WithLogger(component("renderer")),
	)
	if err != nil {
		_ = w.Close()
		return err
	}

	sourceOptions := []ivf.SourceBuilderOption{ivf.WithLogger(component("ivf"))}
	if interval := frameInterval(opts.frameRate); interval > 0 {
		sourceOptions = append(sourceOptions, ivf.WithFrameInterval(interval))
	}

	target := gpu.NewTextureTarget(r.Device(), r.Queue(),
		gpu.WithLabel(filepath.Base(opts.asset)),
		gpu.WithLogger(component("gpu")),
	)
	binding, err := media.NewTextureBinding(target,
		ivf.FileAsset{Path: opts.asset, Options: sourceOptions},
		media.WithLooping(opts.loop),
		media.WithLogger(component("media")),
	)
	if err != nil {
		r.Release()
		_ = w.Close()
		return err
	}

	engineOptions := []engine.EngineBuilderOption{
		engine.WithWindow(w),
		engine.WithRenderer(r),
		engine.WithBinding(binding),
		engine.WithProfiling(opts.profile),
		engine.WithLogger(component("engine")),
	}

	var look camera.LookController
	if projection == renderer.ProjectionSphere {
		look = camera.NewLookController()
		cam := camera.NewCamera(
			camera.WithController(look),
			camera.WithFov(float32(opts.fov*math.Pi/180)),
		)
		engineOptions = append(engineOptions, engine.WithCamera(cam))

		drag := &mouseLook{controller: look}
		w.SetMouseDownCallback(drag.press)
		w.SetMouseUpCallback(drag.release)
		w.SetMouseMoveCallback(drag.move)
		w.SetScrollCallback(func(delta float32) {
			cam.Zoom(delta * zoomStep)
		})
	}

	eng := engine.NewEngine(engineOptions...)

	if src, ok := binding.Source().(ivf.Source); ok {
		header := src.Header()
		log.WithFields(logrus.Fields{
			"fourcc":   header.FourCC,
			"width":    header.Width,
			"height":   header.Height,
			"interval": header.FrameInterval,
			"frames":   header.NumFrames,
		}).Info("Playing")

		eng.Profiler().AddReporter("source", func() logrus.Fields {
			stats := src.Stats()
			return logrus.Fields{
				"decoded":       stats.Decoded,
				"skipped":       stats.Skipped,
				"decode_errors": stats.DecodeErrors,
				"loops":         stats.Loops,
				"completed":     stats.Completed,
			}
		})
	}

	vsync := opts.vsync
	w.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyQ:
			eng.Quit()
		case common.KeyP:
			if eng.ProfilerEnabled() {
				eng.DisableProfiler()
			} else {
				eng.EnableProfiler()
			}
		case common.KeyV:
			vsync = !vsync
			mode := renderer.PresentModeUncapped
			if vsync {
				mode = renderer.PresentModeVSync
			}
			r.SetPresentMode(mode)
			r.Resize(w.Width(), w.Height())
			log.WithField("vsync", vsync).Info("Present mode changed")
		case common.KeyLeft, common.KeyRight, common.KeyUp, common.KeyDown:
			if look != nil {
				turn(look, keyCode)
			}
		}
	})

	return eng.Run()
}

// zoomStep is the field of view change in radians per scroll notch.
const zoomStep = 0.05

// mouseLook turns the controller while the left mouse button is held.
type mouseLook struct {
	controller camera.LookController
	dragging   bool
	lastX      int32
	lastY      int32
}

func (m *mouseLook) press(x, y int32) {
	m.dragging = true
	m.lastX, m.lastY = x, y
}

func (m *mouseLook) release(x, y int32) {
	m.dragging = false
}

func (m *mouseLook) move(x, y int32) {
	if !m.dragging {
		return
	}
	m.controller.Look(float32(x-m.lastX), float32(y-m.lastY))
	m.lastX, m.lastY = x, y
}

// turn maps an arrow key to one look step.
func turn(look camera.LookController, keyCode uint32) {
	switch keyCode {
	case common.KeyLeft:
		look.TurnLeft()
	case common.KeyRight:
		look.TurnRight()
	case common.KeyUp:
		look.TurnUp()
	case common.KeyDown:
		look.TurnDown()
	}
}

// frameInterval converts a frame rate flag to a frame interval; 0 keeps the container's timebase.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
