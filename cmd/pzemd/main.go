// pzemd polls a PZEM-004T v3.0 energy meter over Modbus-RTU and serves
// the readings as Prometheus metrics, with a small HTTP API for the
// device-side commands (energy reset, address change).
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	serial "github.com/hootrhino/goserial"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pzem "github.com/gotjoshua/pzem004t"
	"github.com/gotjoshua/pzem004t/internal/config"
)

var flagConfig = flag.String("config", "pzemd.yaml", "path to the YAML configuration file")

// command is device work enqueued by an HTTP handler. It runs on the
// poll goroutine, which is the only one allowed to touch the bus.
type command struct {
	run  func() error
	done chan error
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	level, err := pzem.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := pzem.NewSimpleLogger(nil, level, "pzemd")

	// The short timeout makes single-byte reads effectively
	// non-blocking; the driver's own deadline governs the transaction.
	conn, err := serial.Open(&serial.Config{
		Address:  cfg.Device.Port,
		BaudRate: cfg.Device.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  5 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("failed to open serial port %s: %v", cfg.Device.Port, err)
	}
	port := pzem.NewSerialPort(conn, "Hw")
	defer port.Close()

	pollInterval := time.Duration(cfg.Device.PollIntervalMs) * time.Millisecond
	dev := pzem.NewDevice(port, pzem.DeviceConfig{
		Address:      cfg.Device.Address,
		ReadTimeout:  time.Duration(cfg.Device.ReadTimeoutMs) * time.Millisecond,
		PollInterval: pollInterval,
		Logger:       logger,
	})
	log.Printf("polling %s every %s", dev.Description(), pollInterval)

	registerMetrics()
	commands := make(chan command)

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/api/reset-energy", handleResetEnergy(dev, commands))
	http.HandleFunc("/api/address", handleAddress(dev, commands))

	go func() {
		log.Printf("listening on %s", cfg.HTTP.Listen)
		if err := http.ListenAndServe(cfg.HTTP.Listen, nil); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			dev.Poll()
			updateMetrics(dev)
		case cmd := <-commands:
			cmd.done <- cmd.run()
		}
	}
}

// enqueue hands work to the poll goroutine and waits for the result.
func enqueue(commands chan<- command, run func() error) error {
	cmd := command{run: run, done: make(chan error, 1)}
	commands <- cmd
	return <-cmd.done
}

// handleResetEnergy queues an energy counter reset. The reset transacts
// on the next poll tick.
func handleResetEnergy(dev *pzem.Device, commands chan<- command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}

		err := enqueue(commands, func() error {
			dev.RequestEnergyReset()
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(w, "energy reset queued")
	}
}

// handleAddress reads (GET) or rewrites (POST, ?to=0x10) the slave
// address.
func handleAddress(dev *pzem.Device, commands chan<- command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, "0x%s\n", dev.Address())

		case http.MethodPost:
			to, err := strconv.ParseUint(r.URL.Query().Get("to"), 0, 8)
			if err != nil {
				http.Error(w, "invalid address: "+err.Error(), http.StatusBadRequest)
				return
			}

			err = enqueue(commands, func() error {
				return dev.ChangeAddress(uint8(to))
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, "address changed to 0x%02x\n", uint8(to))

		default:
			http.Error(w, "GET or POST required", http.StatusMethodNotAllowed)
		}
	}
}
