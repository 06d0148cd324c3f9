package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/fundamentals"
	"github.com/gekko3d/fundamentals/lessonrt/rt/lessons"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML session config")
	lesson := flag.String("lesson", "", "lesson to run: "+strings.Join(lessons.Names(), ", "))
	debug := flag.Bool("debug", false, "Enable debug logging and shader validation")
	msaa := flag.Bool("msaa", false, "Render with 4x multisampling where the lesson supports it")
	flag.Parse()

	log := fundamentals.NewDefaultLogger("lessonrt", *debug)

	cfg, err := fundamentals.LoadConfig(*configPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}
	if *lesson != "" {
		cfg.Lesson = *lesson
	}
	if *debug {
		cfg.Debug = true
		cfg.ValidateShaders = true
	}
	if *msaa {
		cfg.SampleCount = 4
	}
	if cfg.Window.Title == fundamentals.DefaultConfig().Window.Title {
		cfg.Window.Title = fmt.Sprintf("%s - %s", cfg.Window.Title, cfg.Lesson)
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := fundamentals.CreateWindow(cfg.Window)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	session, err := fundamentals.NewSession(cfg, window, log)
	if err != nil {
		log.Errorf("%v", err)
		panic(err)
	}
	defer session.Release()

	if err := session.Run(); err != nil {
		log.Errorf("%v", err)
	}
}
