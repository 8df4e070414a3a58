// Command reaction-arcade runs the ultrasonic reaction game on a terminal,
// reading the sensor over serial and publishing game events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/sweeney/reaction-arcade/internal/audio"
	"github.com/sweeney/reaction-arcade/internal/camera"
	"github.com/sweeney/reaction-arcade/internal/config"
	"github.com/sweeney/reaction-arcade/internal/gpio"
	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/metrics"
	"github.com/sweeney/reaction-arcade/internal/mqtt"
	"github.com/sweeney/reaction-arcade/internal/screen"
	"github.com/sweeney/reaction-arcade/internal/sensor"
	"github.com/sweeney/reaction-arcade/internal/status"
	"github.com/sweeney/reaction-arcade/internal/tui"
	"github.com/sweeney/reaction-arcade/internal/web"
)

func main() {
	cfg := config.Default()
	flag.StringVar(&cfg.SerialPort, "port", "", "Serial port of the sensor (empty to use the saved port or probe)")
	flag.IntVar(&cfg.SerialBaud, "baud", cfg.SerialBaud, "Serial baud rate")
	flag.IntVar(&cfg.CameraIndex, "camera", cfg.CameraIndex, "Camera device index (default: saved index)")
	flag.IntVar(&cfg.FrameRate, "fps", cfg.FrameRate, "Frame loop rate in Hz")
	flag.IntVar(&cfg.CameraRate, "camera-fps", cfg.CameraRate, "Camera capture rate in Hz")
	flag.Float64Var(&cfg.Thresholds.ArmZoneCM, "arm-zone", cfg.Thresholds.ArmZoneCM, "Distance in cm at or below which an attempt arms")
	flag.DurationVar(&cfg.Thresholds.NearCooldown, "near-cooldown", cfg.Thresholds.NearCooldown, "Minimum gap between proximity events")
	flag.DurationVar(&cfg.Thresholds.AttemptGap, "attempt-gap", cfg.Thresholds.AttemptGap, "Sample silence that ends an attempt")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for leaderboard, session and settings files")
	flag.StringVar(&cfg.Broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.HTTPAddr, "http", "", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL leaderboard DSN (empty for the JSON file)")
	flag.StringVar(&cfg.GPIOChip, "gpio-chip", cfg.GPIOChip, "GPIO chip of the proximity switch")
	flag.IntVar(&cfg.GPIOPin, "gpio-pin", cfg.GPIOPin, "BCM pin of the proximity switch (negative to disable)")
	flag.BoolVar(&cfg.Sound, "sound", false, "Play audio cues")
	flag.BoolVar(&cfg.Headless, "headless", false, "Run without the terminal UI")
	listPorts := flag.Bool("list-ports", false, "Print candidate serial ports and exit")

	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *listPorts {
		if err := printPorts(cfg.SerialBaud); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(cfg, set["port"], set["camera"]); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printPorts(baud int) error {
	ports, err := sensor.NewSerialSource("", baud).Candidates()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func run(cfg config.Config, portSet, cameraSet bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	// Saved device choices apply unless overridden on the command line
	settings := config.NewSettingsFile(cfg.SettingsPath())
	saved := settings.Load()
	if !portSet {
		cfg.SerialPort = saved.SerialPort
	}
	if !cameraSet {
		cfg.CameraIndex = saved.CameraIndex
	}

	headless := cfg.Headless || !term.IsTerminal(int(os.Stdout.Fd()))
	if !headless {
		// The terminal UI owns stdout; keep logs out of it
		f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	board, storeName, closeBoard, err := openBoard(cfg)
	if err != nil {
		return err
	}
	defer closeBoard()

	// Initialize MQTT
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker, "reaction-arcade-"+uuid.NewString()[:8])
	}
	defer publisher.Close()

	m := metrics.New()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		FrameRate:      cfg.FrameRate,
		CameraRate:     cfg.CameraRate,
		ArmZoneCM:      cfg.Thresholds.ArmZoneCM,
		NearCooldownMs: cfg.Thresholds.NearCooldown.Milliseconds(),
		AttemptGapMs:   cfg.Thresholds.AttemptGap.Milliseconds(),
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		Broker:         cfg.Broker,
		HTTPAddr:       cfg.HTTPAddr,
		Store:          storeName,
	})

	var player audio.Player = audio.Nop{}
	if cfg.Sound {
		b, err := audio.NewBeeper(0.5)
		if err != nil {
			// Non-fatal, the game runs without sound
			log.Printf("audio: %v", err)
		} else {
			player = b
		}
	}
	defer player.Close()

	svc := &screen.Services{
		Config:   cfg,
		Settings: settings,
		Sensor: func(port string) sensor.Source {
			return sensor.NewSerialSource(port, cfg.SerialBaud)
		},
		Ports:       sensor.NewSerialSource("", cfg.SerialBaud).Candidates,
		Camera:      camera.Unavailable{},
		Board:       board,
		Events:      publisher,
		Metrics:     m,
		Tracker:     tracker,
		Audio:       player,
		Port:        cfg.SerialPort,
		CameraIndex: cfg.CameraIndex,
	}
	if cfg.GPIOPin >= 0 {
		svc.Proximity = func() (gpio.Reader, error) {
			r, err := gpio.NewRealReader(cfg.GPIOChip, cfg.GPIOPin)
			if err != nil {
				return nil, err
			}
			return r, nil
		}
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, board, m.Registry)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	var ui frontend = headlessUI{}
	if !headless {
		t, err := tui.New(cfg)
		if err != nil {
			return err
		}
		defer t.Close()
		ui = t
	}

	log.Printf("started: port=%q camera=%d fps=%d store=%s broker=%q headless=%v",
		cfg.SerialPort, cfg.CameraIndex, cfg.FrameRate, storeName, cfg.Broker, headless)

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctl := screen.NewController(svc)
	return runLoop(ctl, ui, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// openBoard selects PostgreSQL when a DSN is configured and the JSON file
// otherwise.
func openBoard(cfg config.Config) (leaderboard.Store, string, func(), error) {
	if cfg.DatabaseURL == "" {
		return leaderboard.NewFileStore(cfg.LeaderboardPath()), "file", func() {}, nil
	}
	db, err := leaderboard.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, "", nil, fmt.Errorf("connect leaderboard db: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, "", nil, fmt.Errorf("migrate leaderboard db: %w", err)
	}
	return db, "postgres", func() { db.Close() }, nil
}

// frontend is the input/output surface driven by the frame loop.
type frontend interface {
	// Poll returns pending keys and whether an interrupt was requested.
	Poll() ([]screen.Key, bool)
	Render(draw func(screen.Canvas))
}

// headlessUI has no input and draws nothing.
type headlessUI struct{}

func (headlessUI) Poll() ([]screen.Key, bool)  { return nil, false }
func (headlessUI) Render(func(screen.Canvas)) {}

func runLoop(ctl *screen.Controller, ui frontend, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	ctl.Start(startTime)
	defer ctl.Close()
	lastHeartbeat := startTime

	shutdown := func(reason string) {
		// Close the active screen first so SESSION_END precedes SHUTDOWN
		ctl.Close()
		event := mqtt.SystemEvent{
			Timestamp: now(),
			Event:     "SHUTDOWN",
			Reason:    reason,
			Retained:  true,
		}
		if tracker != nil {
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish shutdown event: %v", err)
		} else {
			log.Printf("published shutdown event")
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			shutdown(signalName(s))
			return nil

		case <-tick:
			t := now()
			keys, interrupted := ui.Poll()
			if interrupted {
				shutdown("INTERRUPT")
				return nil
			}

			quit := false
			for _, k := range keys {
				if ctl.HandleKey(k, t) {
					quit = true
					break
				}
			}
			if !quit {
				quit = ctl.Update(t)
			}
			if quit {
				log.Printf("quit requested")
				shutdown("QUIT")
				return nil
			}
			ui.Render(ctl.Draw)

			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hb := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
				if tracker != nil {
					snap := tracker.Snapshot()
					log.Printf("heartbeat: uptime=%v screen=%s completed=%d", snap.Uptime(), snap.Screen, snap.Counts.Completed)
					hb.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hb); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
