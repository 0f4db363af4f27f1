package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the estimator binaries inject into the pipeline
// at call time. The core packages never read the environment themselves;
// magic numbers from the original experiment (storage limits, correction
// factor) live here as explicit, overridable values.
type Config struct {
	// EarthRadiusKm is the sphere radius for ground-track distances.
	EarthRadiusKm float64
	// OrbitAltitudeKm, when positive, is added to EarthRadiusKm so the
	// geodesic measures arc length at orbital height instead of on the
	// ground.
	OrbitAltitudeKm float64
	// CorrectionFactor is the empirical multiplier applied to the raw
	// average speed. Calibrated, not derived; see DefaultCorrectionFactor.
	CorrectionFactor float64
	// MinSampleCount is the smallest sample count an estimate needs
	// before it is persisted as meaningful.
	MinSampleCount int

	// ImageDir holds captured images and is scanned in name order on
	// replay.
	ImageDir string
	// ResultPath is the text artifact the final estimate is written to.
	ResultPath string
	// HistoryDBPath is the SQLite run-history database; empty disables
	// history.
	HistoryDBPath string

	// Capture limits, mirroring the flight configuration: whichever of
	// these trips first ends the capture loop.
	CaptureInterval time.Duration
	MaxImages       int
	MaxStorageBytes int64
	MaxCaptureTime  time.Duration
	// RetainImages is the number of most recent images kept on disk
	// after a run; older ones are pruned.
	RetainImages int

	// MetricsAddr is the HTTP address for Prometheus /metrics.
	MetricsAddr string

	// MQTTBroker enables estimate publishing when non-empty, e.g.
	// "tcp://localhost:1883".
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	// ReferenceTLE1/2, when both set, enable the SGP4 reference-speed
	// comparison against the estimate.
	ReferenceTLE1 string
	ReferenceTLE2 string
}

// Load builds a Config from the environment, falling back to the defaults
// of the original flight configuration.
func Load() Config {
	return Config{
		EarthRadiusKm:    getEnvFloat("EARTH_RADIUS_KM", 6371.0),
		OrbitAltitudeKm:  getEnvFloat("ORBIT_ALTITUDE_KM", 0),
		CorrectionFactor: getEnvFloat("CORRECTION_FACTOR", 1.05),
		MinSampleCount:   getEnvInt("MIN_SAMPLE_COUNT", 1),

		ImageDir:      getEnv("IMAGE_DIR", "./images"),
		ResultPath:    getEnv("RESULT_PATH", "./result.txt"),
		HistoryDBPath: getEnv("HISTORY_DB_PATH", ""),

		CaptureInterval: getEnvDuration("CAPTURE_INTERVAL", 5*time.Second),
		MaxImages:       getEnvInt("MAX_IMAGES", 42),
		MaxStorageBytes: getEnvInt64("MAX_STORAGE_BYTES", 250*1024*1024),
		MaxCaptureTime:  getEnvDuration("MAX_CAPTURE_DURATION", 480*time.Second),
		RetainImages:    getEnvInt("RETAIN_IMAGES", 42),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "groundtrack/estimate"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "groundtrack-estimator"),

		ReferenceTLE1: getEnv("REFERENCE_TLE1", ""),
		ReferenceTLE2: getEnv("REFERENCE_TLE2", ""),
	}
}

// GeodesicRadiusKm is the sphere radius the pipeline should measure on:
// Earth radius plus orbit altitude when one is configured.
func (c Config) GeodesicRadiusKm() float64 {
	if c.OrbitAltitudeKm > 0 {
		return c.EarthRadiusKm + c.OrbitAltitudeKm
	}
	return c.EarthRadiusKm
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
