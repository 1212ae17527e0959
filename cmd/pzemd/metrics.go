package main

import (
	"github.com/prometheus/client_golang/prometheus"

	pzem "github.com/gotjoshua/pzem004t"
)

var (
	magnitudeGauges = map[pzem.Magnitude]prometheus.Gauge{}
	alarmGauge      prometheus.Gauge
	pollErrors      prometheus.Counter
)

func registerMetrics() {
	addMagnitudeGauge(pzem.MagnitudeVoltage, "pzem_voltage_volts", "Line voltage (V)")
	addMagnitudeGauge(pzem.MagnitudeFrequency, "pzem_frequency_hertz", "Line frequency (Hz)")
	addMagnitudeGauge(pzem.MagnitudeCurrent, "pzem_current_amperes", "Load current (A)")
	addMagnitudeGauge(pzem.MagnitudePowerActive, "pzem_power_active_watts", "Active power (W)")
	addMagnitudeGauge(pzem.MagnitudePowerFactor, "pzem_power_factor_percent", "Power factor (%)")
	addMagnitudeGauge(pzem.MagnitudeEnergyDelta, "pzem_energy_delta_watt_seconds", "Energy used between the last two polls (Ws)")
	addMagnitudeGauge(pzem.MagnitudeEnergy, "pzem_energy_kwh", "Cumulative active energy (kWh)")

	alarmGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pzem_power_alarm",
		Help: "Power alarm flag (1 = threshold exceeded)",
	})
	pollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pzem_poll_errors_total",
		Help: "Polls that failed on the transport",
	})

	for _, g := range magnitudeGauges {
		prometheus.MustRegister(g)
	}
	prometheus.MustRegister(alarmGauge)
	prometheus.MustRegister(pollErrors)
}

func addMagnitudeGauge(m pzem.Magnitude, name, help string) {
	magnitudeGauges[m] = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}

// updateMetrics publishes the device state after a poll tick.
func updateMetrics(dev *pzem.Device) {
	if dev.Err() != nil {
		pollErrors.Inc()
		return
	}
	if !dev.LastReading().OK {
		return
	}

	for _, m := range pzem.Magnitudes {
		magnitudeGauges[m].Set(dev.Value(m))
	}
	if dev.Alarm() {
		alarmGauge.Set(1)
	} else {
		alarmGauge.Set(0)
	}
}
